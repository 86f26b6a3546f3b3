package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	t.Run("RejectsNegative", func(t *testing.T) {
		_, err := ParseMoney("-0.01")
		assert.True(t, errors.Is(err, ErrInvalidAmount))

		_, err = NewMoney(decimal.NewFromInt(-5))
		assert.True(t, errors.Is(err, ErrInvalidAmount))
	})

	t.Run("InvalidText", func(t *testing.T) {
		_, err := ParseMoney("ten")
		assert.True(t, errors.Is(err, ErrValidationFailure))
	})

	t.Run("SubFloorsAtZero", func(t *testing.T) {
		assert.True(t, MustMoney("200").Sub(MustMoney("230")).IsZero())
		assert.Equal(t, "70.00", MustMoney("100").Sub(MustMoney("30")).String())
	})

	t.Run("MulInt", func(t *testing.T) {
		assert.Equal(t, "50.00", MustMoney("5").MulInt(10).String())
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := json.Marshal(MustMoney("12.5"))
		require.NoError(t, err)
		assert.Equal(t, `"12.50"`, string(data))

		var m Money
		require.NoError(t, json.Unmarshal([]byte(`"7.25"`), &m))
		assert.Equal(t, "7.25", m.String())
		require.NoError(t, json.Unmarshal([]byte(`3`), &m))
		assert.Equal(t, "3.00", m.String())

		err = json.Unmarshal([]byte(`"-1"`), &m)
		assert.True(t, errors.Is(err, ErrInvalidAmount))
	})

	t.Run("Scan", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("19.99"))
		assert.Equal(t, "19.99", m.String())
		v, err := m.Value()
		require.NoError(t, err)
		assert.Equal(t, "19.99", v)
	})
}

func TestCodeOf(t *testing.T) {
	err := NewQuantityExceededError("too many")
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeQuantityExceeded, code)
	assert.True(t, errors.Is(err, ErrQuantityExceeded))
	assert.False(t, errors.Is(err, ErrNotFound))

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}
