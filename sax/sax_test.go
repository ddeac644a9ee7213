package sax_test

import (
	"errors"
	"testing"

	"github.com/kfirtal/jsondom/sax"
)

type orderedSink struct {
	name string
	log  *[]string
}

func (s *orderedSink) HandleEvent(ev sax.Event) (bool, error) {
	*s.log = append(*s.log, s.name)
	return true, nil
}

func TestDispatchOrderValidatorFirst(t *testing.T) {
	var log []string
	validator := &orderedSink{name: "validator", log: &log}
	builder := &orderedSink{name: "builder", log: &log}
	disp := sax.NewDispatcher(validator, builder)

	if _, err := disp.Dispatch(sax.Event{Kind: sax.EvNull}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(log) != 2 || log[0] != "validator" || log[1] != "builder" {
		t.Fatalf("expected validator-first fan-out, got %v", log)
	}
}

type erroringSink struct{ err error }

func (s *erroringSink) HandleEvent(ev sax.Event) (bool, error) { return false, s.err }

func TestDispatchStopsAtFirstError(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	disp := sax.NewDispatcher(&erroringSink{err: boom}, &orderedSink{name: "builder", log: &log})

	_, err := disp.Dispatch(sax.Event{Kind: sax.EvNull})
	if err != boom {
		t.Fatalf("expected the first sink's error to propagate, got %v", err)
	}
	if len(log) != 0 {
		t.Fatalf("expected the second sink to never run, got %v", log)
	}
}

func TestDispatchStopsOnRefusalWithoutError(t *testing.T) {
	var log []string
	refuser := &erroringSink{err: nil}
	disp := sax.NewDispatcher(refuser, &orderedSink{name: "builder", log: &log})

	cont, err := disp.Dispatch(sax.Event{Kind: sax.EvNull})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cont {
		t.Fatal("expected Dispatch to report cont=false when a sink refuses")
	}
	if len(log) != 0 {
		t.Fatalf("expected the second sink to never run after a refusal, got %v", log)
	}
}
