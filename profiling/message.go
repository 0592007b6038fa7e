// Package profiling implements the HTTP-based runtime profiling
// collector of spec.md §4.10: emitted backend code sends timing and
// size observations back to this collector as HTTP GET requests, which
// it folds into a
// markov.Model as compilation proceeds across runs.
package profiling

import (
	"fmt"
	"strconv"
	"strings"
)

// ParentRef identifies one upstream (lineage, partition) a TimeMessage's
// duration is measured relative to (spec.md §4.6).
type ParentRef struct {
	Lineage     string
	PartitionID int
}

// TimeMessage reports that lineage's PartitionID finished at TimeMillis,
// having depended on every entry in Parents (spec.md §6's wire format:
// "lineage;partitionId;parents;timeMillis").
type TimeMessage struct {
	Lineage     string
	PartitionID int
	Parents     []ParentRef
	TimeMillis  int64
}

// SizeMessage reports the observed byte size of the tuple stream
// flowing through Lineage.
type SizeMessage struct {
	Lineage string
	Bytes   float64
}

// ParseTimeMessage decodes a "/times?data=" payload: field delimiter
// ';', parent delimiter ',', dependency delimiter '#' (spec.md §4.6,
// §6). Example: "L;0;start,-1#;1000" is lineage L, partition 0, one
// parent (start, partition -1), completing at 1000ms.
func ParseTimeMessage(raw string) (TimeMessage, error) {
	fields := strings.Split(raw, ";")
	if len(fields) != 4 {
		return TimeMessage{}, fmt.Errorf("profiling: malformed time payload %q: want 4 ';'-delimited fields, got %d", raw, len(fields))
	}
	lineage, partitionField, parentsField, timeField := fields[0], fields[1], fields[2], fields[3]
	if lineage == "" {
		return TimeMessage{}, fmt.Errorf("profiling: malformed time payload %q: empty lineage", raw)
	}
	partitionID, err := strconv.Atoi(partitionField)
	if err != nil {
		return TimeMessage{}, fmt.Errorf("profiling: malformed time payload %q: partitionId: %w", raw, err)
	}
	timeMillis, err := strconv.ParseInt(timeField, 10, 64)
	if err != nil {
		return TimeMessage{}, fmt.Errorf("profiling: malformed time payload %q: timeMillis: %w", raw, err)
	}
	parents, err := parseParents(parentsField)
	if err != nil {
		return TimeMessage{}, fmt.Errorf("profiling: malformed time payload %q: %w", raw, err)
	}
	return TimeMessage{Lineage: lineage, PartitionID: partitionID, Parents: parents, TimeMillis: timeMillis}, nil
}

// parseParents decodes "parentLineage,partitionId#parentLineage,partitionId…"
// (spec.md §4.6). A trailing dependency delimiter with nothing after it
// (scenario 6's "start,-1#") is just the last parent's terminator, not
// an empty additional parent.
func parseParents(raw string) ([]ParentRef, error) {
	var out []ParentRef
	for _, group := range strings.Split(raw, "#") {
		if group == "" {
			continue
		}
		parts := strings.Split(group, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("parent group %q: want lineage,partitionId", group)
		}
		pid, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("parent group %q: partitionId: %w", group, err)
		}
		out = append(out, ParentRef{Lineage: parts[0], PartitionID: pid})
	}
	return out, nil
}

// ParseSizeMessages decodes a "/sizes?data=" payload:
// "lineage:bytes;lineage:bytes;…" (spec.md §4.6).
func ParseSizeMessages(raw string) ([]SizeMessage, error) {
	var out []SizeMessage
	for _, entry := range strings.Split(raw, ";") {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("profiling: malformed size entry %q: want lineage:bytes", entry)
		}
		bytes, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("profiling: malformed size entry %q: bytes: %w", entry, err)
		}
		out = append(out, SizeMessage{Lineage: parts[0], Bytes: bytes})
	}
	return out, nil
}
