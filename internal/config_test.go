package internal

import (
	"testing"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("MAX_USERS", "10")
		t.Setenv("BADGER_FILEPATH", "/tmp/badger")

		var config Config
		_, err := env.UnmarshalFromEnviron(&config)
		req.NoError(err)

		req.Equal(10, config.MaxUsers)
		req.Equal("*", config.MaskCharacter)
		req.Equal(5000, config.Port)
		req.Equal("INFO", config.LogLevel)
	})

	t.Run("should fail without the required variables", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("MAX_USERS", "")
		t.Setenv("BADGER_FILEPATH", "")

		var config Config
		_, err := env.UnmarshalFromEnviron(&config)
		req.Error(err)
	})
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("*")
	req.NoError(err)
	req.Equal('*', r)

	_, err = CharacterRune("**")
	req.Error(err)

	_, err = CharacterRune("")
	req.Error(err)
}
