// Package cluster groups candidates by the signature of their execution
// result. Clusters are a tie-break signal only.
package cluster

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// Clusters partitions the candidates whose results could be computed.
// Members are candidate indices in ascending order.
type Clusters struct {
	bySignature map[string][]int
	order       []string
	member      map[int]string
}

// Signature hashes the canonical text of a result.
func Signature(r *state.ExecutionResult) string {
	sum := sha256.Sum256([]byte(r.Signature()))
	return hex.EncodeToString(sum[:])
}

// Build computes (or reuses) each candidate's result and groups the
// candidates by signature. Candidates whose result cannot be computed are
// left out of every cluster.
func Build(ctx context.Context, candidates []*state.Candidate, exec state.Executor) *Clusters {
	c := &Clusters{
		bySignature: make(map[string][]int),
		member:      make(map[int]string),
	}
	for i, cand := range candidates {
		if cand == nil {
			continue
		}
		res, err := cand.ExecutionResult(ctx, exec)
		if err != nil || res == nil {
			continue
		}
		sig := Signature(res)
		if _, ok := c.bySignature[sig]; !ok {
			c.order = append(c.order, sig)
		}
		c.bySignature[sig] = append(c.bySignature[sig], i)
		c.member[i] = sig
	}
	return c
}

// Empty reports whether no candidate could be clustered.
func (c *Clusters) Empty() bool {
	return c == nil || len(c.order) == 0
}

// Len returns the number of clusters.
func (c *Clusters) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// SizeOf returns the size of the cluster containing candidate idx, or 0
// when the candidate is unclustered.
func (c *Clusters) SizeOf(idx int) int {
	if c == nil {
		return 0
	}
	sig, ok := c.member[idx]
	if !ok {
		return 0
	}
	return len(c.bySignature[sig])
}

// Groups returns the clusters in first-seen order.
func (c *Clusters) Groups() [][]int {
	if c == nil {
		return nil
	}
	out := make([][]int, 0, len(c.order))
	for _, sig := range c.order {
		members := append([]int(nil), c.bySignature[sig]...)
		out = append(out, members)
	}
	return out
}

// Sizes returns cluster sizes keyed by signature, for diagnostics.
func (c *Clusters) Sizes() map[string]int {
	out := make(map[string]int, c.Len())
	if c == nil {
		return out
	}
	for sig, members := range c.bySignature {
		out[sig] = len(members)
	}
	return out
}

// Members returns every clustered candidate index in ascending order.
func (c *Clusters) Members() []int {
	if c == nil {
		return nil
	}
	out := make([]int, 0, len(c.member))
	for idx := range c.member {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
