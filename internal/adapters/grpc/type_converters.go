package grpc

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

// entityField reads a non-negative whole number field as an EntityID
func entityField(in *structpb.Struct, name string, required bool) (shared.EntityID, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		if required {
			return shared.NoEntity, fmt.Errorf("%s is required", name)
		}
		return shared.NoEntity, nil
	}
	n, err := wholeNumber(v, name)
	if err != nil {
		return shared.NoEntity, err
	}
	if n < 0 {
		return shared.NoEntity, fmt.Errorf("%s must not be negative", name)
	}
	return shared.EntityID(n), nil
}

// intField reads an optional whole number field
func intField(in *structpb.Struct, name string) (int, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return 0, nil
	}
	n, err := wholeNumber(v, name)
	return int(n), err
}

func wholeNumber(v *structpb.Value, name string) (int64, error) {
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	f := num.NumberValue
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%s must be a whole number", name)
	}
	return int64(f), nil
}

// stringField reads a string field
func stringField(in *structpb.Struct, name string, required bool) (string, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		if required {
			return "", fmt.Errorf("%s is required", name)
		}
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	return s.StringValue, nil
}

func cellValue(c shared.Cell) map[string]interface{} {
	return map[string]interface{}{"x": c.X, "y": c.Y}
}

// SnapshotToStruct converts a scheduler snapshot to its wire form
func SnapshotToStruct(snap scheduling.Snapshot) (*structpb.Struct, error) {
	workers := make([]interface{}, 0, len(snap.Workers))
	for _, w := range snap.Workers {
		workers = append(workers, map[string]interface{}{
			"id":         uint64(w.ID),
			"supervisor": uint64(w.Supervisor),
			"cell":       cellValue(w.Cell),
			"kind":       string(w.Kind),
			"phase":      string(w.Phase),
			"work_item":  uint64(w.WorkItem),
		})
	}
	items := make([]interface{}, 0, len(snap.WorkItems))
	for _, wi := range snap.WorkItems {
		items = append(items, map[string]interface{}{
			"id":       uint64(wi.ID),
			"kind":     string(wi.Kind),
			"target":   uint64(wi.Target),
			"cell":     cellValue(wi.Cell),
			"owner":    uint64(wi.Owner),
			"claims":   wi.Claims,
			"capacity": wi.Capacity,
			"priority": wi.Priority,
		})
	}
	requests := make([]interface{}, 0, len(snap.Requests))
	for _, r := range snap.Requests {
		requests = append(requests, map[string]interface{}{
			"id":       r.ID,
			"key":      r.Key,
			"issuer":   uint64(r.Issuer),
			"desired":  r.Desired,
			"inflight": r.Inflight,
		})
	}
	entries := make([]interface{}, 0, len(snap.Ledger))
	for _, e := range snap.Ledger {
		entries = append(entries, map[string]interface{}{
			"table":    string(e.Table),
			"object":   uint64(e.Object),
			"resource": string(e.Resource),
			"count":    e.Count,
		})
	}

	return structpb.NewStruct(map[string]interface{}{
		"tick":       snap.Tick,
		"workers":    workers,
		"work_items": items,
		"requests":   requests,
		"leases":     snap.Leases,
		"ledger":     entries,
	})
}
