package testutil

import (
	"os"
	"reflect"
	"testing"
)

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

func IsNil(t *testing.T, value interface{}, msg string) {
	t.Helper()

	if !isNil(value) {
		t.Fatalf("%s: expected nil, got %v", msg, value)
	}
}

func IsNotNil(t *testing.T, value interface{}, msg string) {
	t.Helper()

	if isNil(value) {
		t.Fatalf("%s: expected non-nil", msg)
	}
}

func Assert(t *testing.T, expected interface{}, actual interface{}, msg string) {
	t.Helper()

	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func ReadFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}

	return data
}
