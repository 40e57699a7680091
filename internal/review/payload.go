package review

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// attemptSchema describes one line of an attempt log.
const attemptSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["item_id", "correct"],
	"additionalProperties": false,
	"properties": {
		"learner_id": {"type": "string", "minLength": 1, "maxLength": 128},
		"item_id": {"type": "string", "minLength": 1, "maxLength": 128},
		"correct": {"type": "boolean"},
		"response_time_ms": {"type": "integer", "minimum": 0, "maximum": 9223372036854},
		"answered_at": {"type": "string", "format": "date-time"}
	}
}`

const attemptSchemaURL = "schema://attempt.json"

// maxResponseTimeMs is the largest millisecond count a time.Duration holds.
// The schema's response_time_ms maximum matches it.
const maxResponseTimeMs = math.MaxInt64 / int64(time.Millisecond)

var compiledAttemptSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var def any
	if err := json.Unmarshal([]byte(attemptSchema), &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(attemptSchemaURL, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(attemptSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return compiled, nil
})

// attemptLine is the decoded form of one attempt log line.
type attemptLine struct {
	LearnerID      string     `json:"learner_id"`
	ItemID         string     `json:"item_id"`
	Correct        bool       `json:"correct"`
	ResponseTimeMs *int64     `json:"response_time_ms"`
	AnsweredAt     *time.Time `json:"answered_at"`
}

// ParseAttempt validates a JSON attempt record and converts it to an
// Attempt. defaultLearner is used when the record has no learner_id.
func ParseAttempt(raw []byte, defaultLearner string) (Attempt, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Attempt{}, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidAttempt, err)
	}

	schema, err := compiledAttemptSchema()
	if err != nil {
		return Attempt{}, fmt.Errorf("attempt schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return Attempt{}, fmt.Errorf("%w: %v", ErrInvalidAttempt, err)
	}

	var line attemptLine
	if err := json.Unmarshal(raw, &line); err != nil {
		return Attempt{}, fmt.Errorf("%w: %v", ErrInvalidAttempt, err)
	}

	a := Attempt{
		LearnerID: line.LearnerID,
		ItemID:    line.ItemID,
		Correct:   line.Correct,
	}
	if a.LearnerID == "" {
		a.LearnerID = defaultLearner
	}
	if line.ResponseTimeMs != nil {
		if ms := *line.ResponseTimeMs; ms < 0 || ms > maxResponseTimeMs {
			return Attempt{}, fmt.Errorf("%w: response_time_ms %d out of range", ErrInvalidAttempt, ms)
		}
		d := time.Duration(*line.ResponseTimeMs) * time.Millisecond
		a.ResponseTime = &d
	}
	if line.AnsweredAt != nil {
		a.AnsweredAt = *line.AnsweredAt
	}
	return a, nil
}

// LineError reports a rejected line of an attempt log.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// ImportReport summarizes an attempt log import.
type ImportReport struct {
	Applied  int
	Rejected []*LineError
}

// maxLineBytes bounds a single attempt log line.
const maxLineBytes = 1 << 20

// ImportAttempts replays a JSON-lines attempt log in order. Invalid lines
// are reported and skipped; a store failure stops the import.
func (s *Service) ImportAttempts(ctx context.Context, r io.Reader, defaultLearner string) (*ImportReport, error) {
	report := &ImportReport{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		a, err := ParseAttempt([]byte(raw), defaultLearner)
		if err == nil {
			_, err = s.RecordAttempt(ctx, a)
		}
		switch {
		case err == nil:
			report.Applied++
		case errors.Is(err, ErrInvalidAttempt):
			report.Rejected = append(report.Rejected, &LineError{Line: lineNo, Err: err})
		default:
			return report, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("read attempt log: %w", err)
	}

	s.logger.InfoContext(ctx, "attempt log imported",
		"applied", report.Applied, "rejected", len(report.Rejected))
	return report, nil
}
