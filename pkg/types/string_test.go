package types

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
)

func TestStringField_Serialize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStringField("abc").Serialize(&buf))

	data := buf.Bytes()
	require.Len(t, data, int(StringType.Size()))
	assert.Equal(t, uint32(3), binary.BigEndian.Uint32(data[:4]))
	assert.Equal(t, []byte("abc"), data[4:7])
	assert.Equal(t, make([]byte, StringMaxSize-3), data[7:])
}

func TestStringField_Truncates(t *testing.T) {
	long := strings.Repeat("x", StringMaxSize+10)
	f := NewStringField(long)
	assert.Len(t, f.Value, StringMaxSize)

	var buf bytes.Buffer
	require.NoError(t, f.Serialize(&buf))
	assert.Len(t, buf.Bytes(), int(StringType.Size()))
}

func TestStringField_RoundTrip(t *testing.T) {
	for _, v := range []string{"", "hello", strings.Repeat("z", StringMaxSize)} {
		var buf bytes.Buffer
		require.NoError(t, NewStringField(v).Serialize(&buf))

		parsed, err := ParseField(&buf, StringType)
		require.NoError(t, err)
		assert.Equal(t, v, parsed.String())
		assert.Zero(t, buf.Len(), "parser must consume the whole field")
	}
}

func TestStringField_Compare(t *testing.T) {
	f := NewStringField("banana")
	tests := []struct {
		name  string
		op    primitives.Predicate
		other string
		want  bool
	}{
		{"equal", primitives.Equals, "banana", true},
		{"less", primitives.LessThan, "cherry", true},
		{"greater", primitives.GreaterThan, "apple", true},
		{"not equal", primitives.NotEqual, "apple", true},
		{"like substring", primitives.Like, "nan", true},
		{"like miss", primitives.Like, "xyz", false},
		{"ge", primitives.GreaterThanOrEqual, "banana", true},
		{"le", primitives.LessThanOrEqual, "apple", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Compare(tt.op, NewStringField(tt.other))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := f.Compare(primitives.Equals, NewIntField(1))
	assert.ErrorIs(t, err, dberror.ErrSchemaMismatch)

	_, err = f.Compare(primitives.Like, nil)
	assert.ErrorIs(t, err, dberror.ErrSchemaMismatch)
	assert.False(t, f.Equals(nil))
}

func TestParseField_CorruptLength(t *testing.T) {
	buf := make([]byte, StringType.Size())
	binary.BigEndian.PutUint32(buf, StringMaxSize+1)

	_, err := ParseField(bytes.NewReader(buf), StringType)
	assert.ErrorIs(t, err, dberror.ErrCorruptFile)
}

func TestParseField_ShortInput(t *testing.T) {
	_, err := ParseField(bytes.NewReader([]byte{1, 2}), IntType)
	assert.Error(t, err)
}

func TestFieldFromConstant(t *testing.T) {
	f, err := FieldFromConstant(IntType, "17")
	require.NoError(t, err)
	assert.True(t, f.Equals(NewIntField(17)))

	f, err = FieldFromConstant(StringType, "abc")
	require.NoError(t, err)
	assert.True(t, f.Equals(NewStringField("abc")))

	_, err = FieldFromConstant(IntType, "abc")
	assert.ErrorIs(t, err, dberror.ErrInvalidArgument)
}
