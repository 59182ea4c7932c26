package dedup

import (
	"sort"

	"github.com/docuflow/pdf2csv-api/internal/models"
)

// Group is a set of two or more records sharing one fingerprint.
type Group struct {
	Fingerprint string
	RecordIDs   []string
}

// Grouping is the full duplicate-state decision for a collection scope:
// which groups exist and which records belong to them. Records absent from
// Assignment are not duplicates.
type Grouping struct {
	Groups []Group
	// Assignment maps record id to the fingerprint of its group.
	Assignment map[string]string
}

// Regroup recomputes duplicate groups over every record in a collection
// scope. Grouping is symmetric and transitive: all records sharing a
// fingerprint land in exactly one group. Only fingerprints shared by at
// least two records form a group; singletons and records with an empty
// fingerprint stay unassigned.
func Regroup(records []models.Record) Grouping {
	byFingerprint := make(map[string][]string)
	for _, r := range records {
		fp := Fingerprint(r)
		if fp == "" {
			continue
		}
		byFingerprint[fp] = append(byFingerprint[fp], r.ID)
	}

	grouping := Grouping{Assignment: make(map[string]string)}
	fingerprints := make([]string, 0, len(byFingerprint))
	for fp, ids := range byFingerprint {
		if len(ids) < 2 {
			continue
		}
		fingerprints = append(fingerprints, fp)
	}
	sort.Strings(fingerprints)

	for _, fp := range fingerprints {
		ids := byFingerprint[fp]
		grouping.Groups = append(grouping.Groups, Group{Fingerprint: fp, RecordIDs: ids})
		for _, id := range ids {
			grouping.Assignment[id] = fp
		}
	}
	return grouping
}

// DuplicateCount returns how many records are flagged duplicate under the
// grouping (every member of every group).
func (g Grouping) DuplicateCount() int {
	return len(g.Assignment)
}
