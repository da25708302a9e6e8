package agent

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/surf/pkg/security/domains"
)

// scriptedLLM replays canned replies and records every prompt it saw.
type scriptedLLM struct {
	replies []string
	prompts []string
	calls   int
}

func (s *scriptedLLM) Complete(ctx context.Context, system, user string) (string, error) {
	s.prompts = append(s.prompts, user)
	if s.calls >= len(s.replies) {
		return "", fmt.Errorf("scripted llm exhausted after %d calls", s.calls)
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

// fakeBrowser records actions and serves a static observation.
type fakeBrowser struct {
	obs     Observation
	actions []string
	failOn  string
}

func (f *fakeBrowser) record(desc string) error {
	f.actions = append(f.actions, desc)
	if f.failOn != "" && desc == f.failOn {
		return fmt.Errorf("element not found")
	}
	return nil
}

func (f *fakeBrowser) Navigate(url string, _ time.Duration) error {
	if err := f.record("navigate " + url); err != nil {
		return err
	}
	f.obs.URL = url
	return nil
}

func (f *fakeBrowser) Click(selector string, _ time.Duration) error {
	return f.record("click " + selector)
}

func (f *fakeBrowser) Fill(selector, value string, _ time.Duration) error {
	return f.record("fill " + selector + "=" + value)
}

func (f *fakeBrowser) Extract(selector string) (string, error) {
	if err := f.record("extract " + selector); err != nil {
		return "", err
	}
	return "extracted text", nil
}

func (f *fakeBrowser) Observe() (Observation, error) {
	return f.obs, nil
}

func quietOptions() Options {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return Options{MaxSteps: 10, Logger: log}
}

func TestRunCompletesTask(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		`{"action":"navigate","url":"https://example.com","reason":"open site"}`,
		`{"action":"extract","selector":"h1"}`,
		`{"action":"done","result":"Example Domain"}`,
	}}
	browser := &fakeBrowser{obs: Observation{URL: "about:blank"}}

	result, err := New(llm, browser, quietOptions()).Run(context.Background(), "read the heading")
	require.NoError(t, err)
	assert.Equal(t, "Example Domain", result)
	assert.Equal(t, []string{"navigate https://example.com", "extract h1"}, browser.actions)
}

func TestRunBlocksDisallowedNavigation(t *testing.T) {
	policy, err := domains.Compile([]string{"*.example.com"})
	require.NoError(t, err)

	llm := &scriptedLLM{replies: []string{
		`{"action":"navigate","url":"https://evil.org/login"}`,
		`{"action":"done","result":"stopped"}`,
	}}
	browser := &fakeBrowser{}

	opts := quietOptions()
	opts.Domains = policy

	_, err = New(llm, browser, opts).Run(context.Background(), "task")
	require.NoError(t, err)

	assert.Empty(t, browser.actions, "blocked navigation must not reach the page")
	require.Len(t, llm.prompts, 2)
	assert.Contains(t, llm.prompts[1], "outside the allowed domains")
}

func TestRunFeedsFailuresBack(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		`{"action":"click","selector":"#missing"}`,
		`{"action":"done","result":"gave up"}`,
	}}
	browser := &fakeBrowser{failOn: "click #missing"}

	result, err := New(llm, browser, quietOptions()).Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "gave up", result)

	require.Len(t, llm.prompts, 2)
	assert.Contains(t, llm.prompts[1], "click #missing failed")
}

func TestRunRecoversFromInvalidReply(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		"I think we should look around first.",
		`{"action":"done","result":"ok"}`,
	}}

	result, err := New(llm, &fakeBrowser{}, quietOptions()).Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Contains(t, llm.prompts[1], "invalid reply")
}

func TestRunStopsAtMaxSteps(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		`{"action":"extract"}`,
		`{"action":"extract"}`,
		`{"action":"extract"}`,
	}}

	opts := quietOptions()
	opts.MaxSteps = 3

	_, err := New(llm, &fakeBrowser{}, opts).Run(context.Background(), "task")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "within 3 steps")
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &scriptedLLM{}
	_, err := New(llm, &fakeBrowser{}, quietOptions()).Run(ctx, "task")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, llm.calls)
}

func TestRunDoneFallsBackToReason(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		`{"action":"done","reason":"nothing left to do"}`,
	}}

	result, err := New(llm, &fakeBrowser{}, quietOptions()).Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "nothing left to do", result)
}
