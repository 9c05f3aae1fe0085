package simulation

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeAnswers(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
		wantErr bool
	}{
		{name: "bare array", payload: `["a", "b", "c"]`, want: []string{"a", "b", "c"}},
		{name: "enveloped array", payload: `{"answers": ["a", "b"]}`, want: []string{"a", "b"}},
		{name: "numbers keep their literal form", payload: `[2, 3.5]`, want: []string{"2", "3.5"}},
		{name: "null answer becomes empty string", payload: `["a", null]`, want: []string{"a", ""}},
		{name: "surrounding whitespace is trimmed", payload: `["  a "]`, want: []string{"a"}},
		{name: "booleans are stringified", payload: `[true]`, want: []string{"true"}},
		{name: "empty array", payload: `[]`, want: []string{}},
		{name: "empty payload", payload: ``, wantErr: true},
		{name: "whitespace payload", payload: `   `, wantErr: true},
		{name: "bare string", payload: `"a"`, wantErr: true},
		{name: "bare number", payload: `42`, wantErr: true},
		{name: "object without answers key", payload: `{"foo": ["a"]}`, wantErr: true},
		{name: "object with null answers", payload: `{"answers": null}`, wantErr: true},
		{name: "malformed json", payload: `[1, 2`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAnswers(json.RawMessage(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeAnswers() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeAnswers() = %v, want %v", got, tt.want)
			}
		})
	}
}
