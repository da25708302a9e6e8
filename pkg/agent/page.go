package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// maxPageText caps how much page text an observation carries into the
// prompt.
const maxPageText = 4000

// Observation is what the model sees of the current page each step.
type Observation struct {
	URL   string
	Title string
	Text  string
}

// Browser is the page surface the agent loop drives. playwright.Page
// satisfies it through pageBrowser; tests substitute a fake.
type Browser interface {
	Navigate(url string, timeout time.Duration) error
	Click(selector string, timeout time.Duration) error
	Fill(selector, value string, timeout time.Duration) error
	Extract(selector string) (string, error)
	Observe() (Observation, error)
}

type pageBrowser struct {
	page playwright.Page
}

// NewPageBrowser wraps a playwright page for the agent loop.
func NewPageBrowser(page playwright.Page) Browser {
	return &pageBrowser{page: page}
}

func (b *pageBrowser) Navigate(url string, timeout time.Duration) error {
	waitUntil := playwright.WaitUntilState("domcontentloaded")
	opts := playwright.PageGotoOptions{WaitUntil: &waitUntil}
	if timeout > 0 {
		ms := float64(timeout.Milliseconds())
		opts.Timeout = &ms
	}
	if _, err := b.page.Goto(url, opts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (b *pageBrowser) Click(selector string, timeout time.Duration) error {
	opts := playwright.PageClickOptions{}
	if timeout > 0 {
		ms := float64(timeout.Milliseconds())
		opts.Timeout = &ms
	}
	if err := b.page.Click(selector, opts); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (b *pageBrowser) Fill(selector, value string, timeout time.Duration) error {
	opts := playwright.PageFillOptions{}
	if timeout > 0 {
		ms := float64(timeout.Milliseconds())
		opts.Timeout = &ms
	}
	if err := b.page.Fill(selector, value, opts); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

func (b *pageBrowser) Extract(selector string) (string, error) {
	if selector == "" {
		selector = "body"
	}
	element, err := b.page.QuerySelector(selector)
	if err != nil {
		return "", fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return "", fmt.Errorf("no element matches selector %q", selector)
	}
	text, err := element.TextContent()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return collapseWhitespace(text, maxPageText), nil
}

func (b *pageBrowser) Observe() (Observation, error) {
	obs := Observation{URL: b.page.URL()}

	title, err := b.page.Title()
	if err == nil {
		obs.Title = title
	}

	text, err := b.Extract("body")
	if err != nil {
		// A blank page has no body yet; observe with empty text.
		text = ""
	}
	obs.Text = text
	return obs, nil
}

// collapseWhitespace squashes runs of whitespace into single spaces and
// truncates to max characters.
func collapseWhitespace(s string, max int) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	return truncate(collapsed, max)
}
