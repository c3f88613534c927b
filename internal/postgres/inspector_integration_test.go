//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/ppiankov/procspectre/internal/testutil"
)

func TestIntegration_ListRoutines(t *testing.T) {
	connStr, cleanup := testutil.SetupPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inspector, err := NewInspector(ctx, Config{URL: connStr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer inspector.Close()

	ver, err := inspector.ServerVersion(ctx)
	if err != nil {
		t.Fatalf("server version: %v", err)
	}
	if ver == "" {
		t.Error("empty server version")
	}

	routines, err := inspector.ListRoutines(ctx)
	if err != nil {
		t.Fatalf("list routines: %v", err)
	}

	got := make(map[string]RoutineInfo)
	for _, r := range routines {
		got[r.QualifiedName()] = r
	}
	for _, want := range []string{"public.get_orders", "public.save_order", "billing.charge_card", "billing.legacy_refund"} {
		if _, ok := got[want]; !ok {
			t.Errorf("missing routine %s in %v", want, routines)
		}
	}
	if got["public.save_order"].Kind != KindProcedure {
		t.Errorf("save_order kind = %q, want procedure", got["public.save_order"].Kind)
	}
	if got["billing.charge_card"].Language != "plpgsql" {
		t.Errorf("charge_card language = %q", got["billing.charge_card"].Language)
	}
	if _, ok := got["public.gen_random_uuid"]; ok {
		t.Error("extension routines must be excluded")
	}
	if len(routines) != 4 {
		t.Errorf("expected 4 routines, got %d: %v", len(routines), routines)
	}
}

func TestIntegration_ListRoutines_SchemaFilter(t *testing.T) {
	connStr, cleanup := testutil.SetupPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inspector, err := NewInspector(ctx, Config{URL: connStr, Schemas: []string{"billing"}})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer inspector.Close()

	routines, err := inspector.ListRoutines(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range routines {
		if r.Schema != "billing" {
			t.Errorf("unexpected schema %q", r.Schema)
		}
	}
	if len(routines) != 2 {
		t.Errorf("expected 2 billing routines, got %d", len(routines))
	}
}
