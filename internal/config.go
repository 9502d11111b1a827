package internal

import (
	"fmt"
	"time"
)

type Config struct {
	MaxUsers             int           `env:"MAX_USERS,required=true"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	SearchFilepath       string        `env:"SEARCH_FILEPATH"`
	AutosaveInterval     time.Duration `env:"AUTOSAVE_INTERVAL,default=1m"`
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	MaskCharacter        string        `env:"MASK_CHARACTER,default=*"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=5000"`
	DebugPort            int           `env:"DEBUG_PORT,default=5050"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MASK_CHARACTER must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
