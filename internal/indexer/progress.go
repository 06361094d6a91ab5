// Package indexer orchestrates document discovery, classification and
// similarity-index builds, tracking per-build progress.
package indexer

import (
	"fmt"
	"strings"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
)

// Observer receives one human-readable message per processed file
// during a build. Observers live for a single build only.
type Observer func(message string)

// Progress tracks counters for one index build. It is created at build
// start and discarded afterwards; it is not safe for concurrent use.
type Progress struct {
	TotalFiles     int
	ProcessedFiles int
	ErrorFiles     int
	TypeCounts     map[classifier.DocType]int

	observers []Observer
}

// NewProgress creates a Progress with zeroed per-type counters.
func NewProgress(totalFiles int) *Progress {
	return &Progress{
		TotalFiles: totalFiles,
		TypeCounts: map[classifier.DocType]int{
			classifier.TypeDocumentation: 0,
			classifier.TypeGuide:         0,
			classifier.TypeConvention:    0,
		},
	}
}

// Subscribe registers an observer for this build's notifications.
func (p *Progress) Subscribe(obs Observer) {
	if obs != nil {
		p.observers = append(p.observers, obs)
	}
}

// RecordSuccess counts a processed file and notifies observers.
func (p *Progress) RecordSuccess(identifier string, docType classifier.DocType) {
	p.ProcessedFiles++
	p.TypeCounts[docType]++
	p.notify(fmt.Sprintf("Indexed %s (type: %s)", identifier, docType))
}

// RecordError counts a failed file and notifies observers.
func (p *Progress) RecordError(identifier string, err error) {
	p.ErrorFiles++
	p.notify(fmt.Sprintf("Error indexing %s: %v", identifier, err))
}

// notify delivers a message to every observer. A panicking observer is
// contained and skipped so it cannot stall the build.
func (p *Progress) notify(message string) {
	for _, obs := range p.observers {
		func() {
			defer func() { _ = recover() }()
			obs(message)
		}()
	}
}

// Summary renders the build outcome: processed and error counts plus
// per-type totals.
func (p *Progress) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Successfully indexed %d files", p.ProcessedFiles)
	if p.ErrorFiles > 0 {
		fmt.Fprintf(&b, " (%d errors)", p.ErrorFiles)
	}
	b.WriteString(":")
	for _, t := range classifier.Types() {
		fmt.Fprintf(&b, "\n- %s: %d", t, p.TypeCounts[t])
	}
	return b.String()
}
