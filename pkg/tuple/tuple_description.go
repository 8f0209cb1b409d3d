package tuple

import (
	"fmt"
	"strings"

	"heapdb/pkg/dberror"
	"heapdb/pkg/types"
)

// TupleDescription describes the schema of a tuple: an ordered sequence of
// (type, name) pairs. It is immutable once built.
type TupleDescription struct {
	// Types contains the data type of each field in order
	Types []types.Type
	// FieldNames contains the name of each field (optional, may be nil)
	FieldNames []string
}

// NewTupleDesc creates a new TupleDescription given field types and optional field names.
// If fieldNames is nil, fields will have no names.
//
// Parameters:
//   - fieldTypes: slice of field types (must contain at least one element)
//   - fieldNames: optional slice of field names (must match fieldTypes length if provided)
//
// Returns:
//   - *TupleDescription: newly created tuple descriptor
//   - error: if fieldTypes is empty or fieldNames length doesn't match fieldTypes length
func NewTupleDesc(fieldTypes []types.Type, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) < 1 {
		return nil, dberror.ErrInvalidArgument.Detailf("must provide at least one field type")
	}

	typesCopy := make([]types.Type, len(fieldTypes))
	copy(typesCopy, fieldTypes)

	var namesCopy []string
	if fieldNames != nil {
		if len(fieldNames) != len(fieldTypes) {
			return nil, dberror.ErrInvalidArgument.Detailf("field names length (%d) must match field types length (%d)",
				len(fieldNames), len(fieldTypes))
		}
		namesCopy = make([]string, len(fieldNames))
		copy(namesCopy, fieldNames)
	}

	return &TupleDescription{
		Types:      typesCopy,
		FieldNames: namesCopy,
	}, nil
}

// MustNewTupleDesc is NewTupleDesc for statically known schemas; it panics on error.
func MustNewTupleDesc(fieldTypes []types.Type, fieldNames []string) *TupleDescription {
	td, err := NewTupleDesc(fieldTypes, fieldNames)
	if err != nil {
		panic(err)
	}
	return td
}

// NumFields returns the number of fields in this tuple descriptor.
func (td *TupleDescription) NumFields() int {
	return len(td.Types)
}

// GetFieldName returns the name of the ith field.
//
// Returns:
//   - string: field name, or empty string if no names were provided
//   - error: NotFound if index is out of bounds
func (td *TupleDescription) GetFieldName(i int) (string, error) {
	if i < 0 || i >= len(td.Types) {
		return "", dberror.ErrNotFound.Detailf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}

	if td.FieldNames == nil {
		return "", nil
	}

	return td.FieldNames[i], nil
}

// TypeAtIndex returns the type of the ith field, or NotFound if index is out of bounds.
func (td *TupleDescription) TypeAtIndex(i int) (types.Type, error) {
	if i < 0 || i >= len(td.Types) {
		return 0, dberror.ErrNotFound.Detailf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	return td.Types[i], nil
}

// GetSize returns the size in bytes of tuples corresponding to this TupleDescription.
func (td *TupleDescription) GetSize() uint32 {
	var size uint32
	for _, fieldType := range td.Types {
		size += fieldType.Size()
	}
	return size
}

// Equals reports whether both descriptors have the same number of fields and the
// same type and name at every position.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if td == other {
		return true
	}
	if td == nil || other == nil {
		return false
	}

	if len(td.Types) != len(other.Types) {
		return false
	}

	for i, fieldType := range td.Types {
		if fieldType != other.Types[i] {
			return false
		}
		if td.nameAt(i) != other.nameAt(i) {
			return false
		}
	}
	return true
}

// FindFieldIndex returns the index of the first field with the given name.
// The search is case-sensitive; an absent name fails with NotFound.
func (td *TupleDescription) FindFieldIndex(fieldName string) (int, error) {
	for i := range td.Types {
		if td.FieldNames != nil && td.FieldNames[i] == fieldName {
			return i, nil
		}
	}
	return -1, dberror.ErrNotFound.Detailf("column %s not found", fieldName)
}

// String renders the schema as "TYPE(name),TYPE(name)". Unnamed fields print as null.
func (td *TupleDescription) String() string {
	parts := make([]string, 0, len(td.Types))

	for i, fieldType := range td.Types {
		fieldName := "null"
		if td.FieldNames != nil {
			fieldName = td.FieldNames[i]
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", fieldType.String(), fieldName))
	}

	return strings.Join(parts, ",")
}

func (td *TupleDescription) nameAt(i int) string {
	if td.FieldNames == nil {
		return ""
	}
	return td.FieldNames[i]
}

// Merge concatenates two descriptors, preserving field order: all of td1 then all of td2.
// If either descriptor is nil the other is returned.
func Merge(td1, td2 *TupleDescription) *TupleDescription {
	if td1 == nil {
		return td2
	}
	if td2 == nil {
		return td1
	}

	n := td1.NumFields() + td2.NumFields()
	mergedTypes := make([]types.Type, 0, n)
	mergedTypes = append(mergedTypes, td1.Types...)
	mergedTypes = append(mergedTypes, td2.Types...)

	var mergedNames []string
	if td1.FieldNames != nil || td2.FieldNames != nil {
		mergedNames = make([]string, 0, n)
		for i := range td1.Types {
			mergedNames = append(mergedNames, td1.nameAt(i))
		}
		for i := range td2.Types {
			mergedNames = append(mergedNames, td2.nameAt(i))
		}
	}

	return &TupleDescription{Types: mergedTypes, FieldNames: mergedNames}
}
