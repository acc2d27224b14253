package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommand(t *testing.T) {
	cmd := `-crf 20 -vf "scale=1280:-1" -tune film`
	expected := []string{"-crf", "20", "-vf", "scale=1280:-1", "-tune", "film"}

	args, err := SplitCommand(cmd)
	assert.NoError(t, err)
	assert.Equal(t, expected, args)

	_, err = SplitCommand(`-vf "unterminated`)
	assert.Error(t, err)
}

func TestSanitizeAndValidateArgs(t *testing.T) {
	t.Run("Valid arguments", func(t *testing.T) {
		args, _ := SplitCommand(`-crf 23 -profile:v high -g 48`)
		assert.NoError(t, SanitizeAndValidateArgs(args))
	})

	t.Run("Extra input", func(t *testing.T) {
		args, _ := SplitCommand(`-crf 23 -i /etc/passwd`)
		err := SanitizeAndValidateArgs(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "argument not allowed: -i")
	})

	t.Run("Disallowed character (semicolon)", func(t *testing.T) {
		args, _ := SplitCommand(`-crf 23; ls`)
		err := SanitizeAndValidateArgs(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disallowed character found in argument: 23;")
	})

	t.Run("Disallowed character (dollar)", func(t *testing.T) {
		args, _ := SplitCommand(`-vf "crop=$(($RANDOM))"`)
		err := SanitizeAndValidateArgs(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disallowed character found in argument: crop=$(($RANDOM))")
	})
}
