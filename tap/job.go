package tap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/virtualobs/voclient"
	"github.com/virtualobs/voclient/dal"
	"github.com/virtualobs/voclient/votable"
)

// Phase is a UWS job execution phase.
type Phase string

const (
	PhasePending   Phase = "PENDING"
	PhaseQueued    Phase = "QUEUED"
	PhaseExecuting Phase = "EXECUTING"
	PhaseCompleted Phase = "COMPLETED"
	PhaseError     Phase = "ERROR"
	PhaseAborted   Phase = "ABORTED"
	PhaseHeld      Phase = "HELD"
	PhaseSuspended Phase = "SUSPENDED"
	PhaseArchived  Phase = "ARCHIVED"
	PhaseUnknown   Phase = "UNKNOWN"
)

// Terminal reports whether the phase is final.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseCompleted, PhaseError, PhaseAborted, PhaseArchived:
		return true
	}
	return false
}

// jobDocument is the decoded UWS job resource.
type jobDocument struct {
	XMLName xml.Name `xml:"job"`
	JobID   string   `xml:"jobId"`
	Phase   string   `xml:"phase"`
	OwnerID string   `xml:"ownerId"`
	Results []struct {
		ID   string `xml:"id,attr"`
		Href string `xml:"http://www.w3.org/1999/xlink href,attr"`
	} `xml:"results>result"`
}

func parseJobDocument(r io.Reader) (*jobDocument, error) {
	var doc jobDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("tap: decode job document: %w", err)
	}
	return &doc, nil
}

// Job is a handle to an asynchronous UWS job resource.
type Job struct {
	url     string
	id      string
	phase   Phase
	session *voclient.Session
}

// ID returns the server-assigned job identifier.
func (j *Job) ID() string { return j.id }

// URL returns the job resource URL.
func (j *Job) URL() string { return j.url }

// Phase returns the phase from the last refresh; it may be stale.
func (j *Job) Phase() Phase { return j.phase }

// Run starts the job.
func (j *Job) Run(ctx context.Context) error {
	return j.postPhase(ctx, "RUN")
}

// Abort asks the service to abort the job.
func (j *Job) Abort(ctx context.Context) error {
	return j.postPhase(ctx, "ABORT")
}

func (j *Job) postPhase(ctx context.Context, phase string) error {
	form := url.Values{}
	form.Set("PHASE", phase)
	resp, err := j.session.PostForm(ctx, j.url+"/phase", form)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("tap: phase %s returned %s", phase, resp.Status)
	}
	return nil
}

// RefreshPhase fetches the current phase from the service.
func (j *Job) RefreshPhase(ctx context.Context) (Phase, error) {
	resp, err := j.session.Get(ctx, j.url+"/phase", nil)
	if err != nil {
		return PhaseUnknown, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return PhaseUnknown, fmt.Errorf("tap: phase query returned %s", resp.Status)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return PhaseUnknown, err
	}
	j.phase = Phase(strings.TrimSpace(string(raw)))
	return j.phase, nil
}

func (j *Job) refresh(ctx context.Context) error {
	resp, err := j.session.Get(ctx, j.url, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("tap: job query returned %s", resp.Status)
	}
	doc, err := parseJobDocument(resp.Body)
	if err != nil {
		return err
	}
	j.id = doc.JobID
	j.phase = Phase(doc.Phase)
	return nil
}

// Wait polls the job until it reaches a terminal phase or the context is
// canceled. The poll interval starts at one second and doubles up to a
// twenty second ceiling. A job ending in ERROR reports the service's error
// document; ABORTED is reported as a plain error.
func (j *Job) Wait(ctx context.Context) error {
	interval := time.Second
	const maxInterval = 20 * time.Second

	for {
		phase, err := j.RefreshPhase(ctx)
		if err != nil {
			return err
		}
		if phase.Terminal() {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		if interval < maxInterval {
			interval *= 2
			if interval > maxInterval {
				interval = maxInterval
			}
		}
	}

	switch j.phase {
	case PhaseError:
		return j.fetchError(ctx)
	case PhaseAborted:
		return fmt.Errorf("tap: job %s was aborted", j.id)
	}
	return nil
}

// FetchResult retrieves and parses the job's result table. Valid once the
// job has COMPLETED.
func (j *Job) FetchResult(ctx context.Context) (*dal.Results, error) {
	resp, err := j.session.Get(ctx, j.url+"/results/result", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return dal.ReadResponse(ctx, j.session.Logger(), resp)
}

// Delete destroys the job resource on the service.
func (j *Job) Delete(ctx context.Context) error {
	resp, err := j.session.Delete(ctx, j.url)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("tap: job deletion returned %s", resp.Status)
	}
	return nil
}

// fetchError retrieves the job's error document and surfaces the service's
// reason.
func (j *Job) fetchError(ctx context.Context) error {
	resp, err := j.session.Get(ctx, j.url+"/error", nil)
	if err != nil {
		return fmt.Errorf("tap: job %s failed (error document unavailable: %v)", j.id, err)
	}
	defer resp.Body.Close()

	doc, err := votable.Parse(resp.Body)
	if err != nil {
		return fmt.Errorf("tap: job %s failed (error document unreadable: %v)", j.id, err)
	}
	if qe := doc.QueryError(); qe != nil {
		return fmt.Errorf("tap: job %s failed: %w", j.id, qe)
	}
	return fmt.Errorf("tap: job %s failed", j.id)
}
