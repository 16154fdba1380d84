package axon

import (
	"reflect"
	"testing"
)

type codecState struct {
	Port int    `json:"port" yaml:"port"`
	Host string `json:"host" yaml:"host"`
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	in := codecState{Port: 8080, Host: "localhost"}

	data, err := JSONCodec{}.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out codecState
	if err := (JSONCodec{}).Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip changed value: %+v -> %+v", in, out)
	}
}

func TestYAMLCodec_RoundTrip(t *testing.T) {
	in := codecState{Port: 9090, Host: "example.com"}

	data, err := YAMLCodec{}.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out codecState
	if err := (YAMLCodec{}).Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip changed value: %+v -> %+v", in, out)
	}
}

func TestCodec_ContentTypes(t *testing.T) {
	if got := (JSONCodec{}).ContentType(); got != "application/json" {
		t.Errorf("unexpected JSON content type %q", got)
	}
	if got := (YAMLCodec{}).ContentType(); got != "application/x-yaml" {
		t.Errorf("unexpected YAML content type %q", got)
	}
}
