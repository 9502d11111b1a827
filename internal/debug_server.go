package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/shirou/gopsutil/process"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key    string
	Kind   string
	Detail string
}

type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer exposes an operator page listing snapshot rows by prefix
// together with live server stats. Not part of the client-facing API; bound
// to its own port.
func StartDebugServer(db *badger.DB, port int, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "user:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}
		for k, v := range processStats() {
			data.Stats[k] = v
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, snapshotRow(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
	}()
}

// snapshotRow renders one persisted JSON row for the inspect table.
func snapshotRow(key string, val []byte) InspectRow {
	kind := "unknown"
	switch {
	case strings.HasPrefix(key, "user:"):
		kind = "user"
	case strings.HasPrefix(key, "chat:"):
		kind = "chat"
	}

	var pretty map[string]any
	detail := string(val)
	if err := json.Unmarshal(val, &pretty); err == nil {
		if out, err := json.Marshal(pretty); err == nil {
			detail = string(out)
		}
	}
	return InspectRow{Key: key, Kind: kind, Detail: detail}
}

func processStats() map[string]any {
	stats := make(map[string]any)
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return stats
	}
	if cpu, err := p.CPUPercent(); err == nil {
		stats["CPU %"] = fmt.Sprintf("%.1f", cpu)
	}
	if ram, err := p.MemoryPercent(); err == nil {
		stats["RAM %"] = fmt.Sprintf("%.1f", ram)
	}
	if status, err := p.Status(); err == nil {
		stats["Status"] = status
	}
	return stats
}
