package core

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is the contract-bound reply shape produced by an agent backend.
//
// Decomposer records always carry IsSolution; Solver records leave it nil so
// the serialized form only contains the response field.
type Record struct {
	Content    string `json:"response"`
	IsSolution *bool  `json:"isSolution,omitempty"`
}

// NewDecomposerRecord builds a record carrying an explicit solution flag.
func NewDecomposerRecord(content string, isSolution bool) Record {
	return Record{Content: content, IsSolution: &isSolution}
}

// NewSolverRecord builds a record without solution flag.
func NewSolverRecord(content string) Record {
	return Record{Content: content}
}

// Solution reports whether the record is explicitly flagged as a solution.
func (r Record) Solution() bool { return r.IsSolution != nil && *r.IsSolution }

// SetSolution sets the solution flag.
func (r *Record) SetSolution(v bool) { r.IsSolution = &v }

// JSON returns the wire form used when replaying the record into a history.
func (r Record) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		return r.Content
	}
	return string(b)
}
