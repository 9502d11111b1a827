package main

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
)

// Config is the client's environment configuration.
type Config struct {
	ConfigPath string `envconfig:"CLIENT_CONFIG_PATH" default:"client_config.json"`
}

// KnownServer is one server the client can talk to, as remembered in the
// client config file.
type KnownServer struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Token    string `json:"token"`
	HTTPURL  string `json:"httpURL"`
}

// ClientConfig is the list of servers this client has registered with.
type ClientConfig struct {
	Servers []KnownServer `json:"servers"`
}

func loadClientConfig(path string) (ClientConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ClientConfig{}, nil
	}
	if err != nil {
		return ClientConfig{}, err
	}
	var cfg ClientConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func saveClientConfig(path string, cfg ClientConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
