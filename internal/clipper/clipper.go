// Package clipper imports recipes from web pages. It reads schema.org
// Recipe data when the page publishes it and falls back to asking a
// language model to read the page text.
package clipper

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/llm"
	"recipe-planner/internal/recipe"
)

//go:embed extract_prompt.md
var extractPrompt string

// maxPromptText caps the page text sent to the model.
const maxPromptText = 20000

var ErrNoRecipe = errors.New("no recipe found on page")

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	textGen    llm.TextGenerator
	httpClient *http.Client
}

// NewClipper creates a new Clipper. textGen may be nil, in which case only
// pages with structured recipe data can be imported.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		textGen:    textGen,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the page at url and returns the recipe on it, normalized
// and validated. The recipe is not saved.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*recipe.Recipe, error) {
	doc, err := c.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	rec, ok := FromJSONLD(doc)
	if !ok {
		if c.textGen == nil {
			return nil, ErrNoRecipe
		}
		log.Printf("No structured recipe data at %s, asking the model", url)
		rec, err = c.extractWithLLM(ctx, url, CleanText(doc))
		if err != nil {
			return nil, err
		}
	}

	if rec.ImageURL == "" {
		rec.ImageURL, _ = doc.Find(`meta[property="og:image"]`).Attr("content")
	}
	normalized := recipe.Normalize(rec)
	if err := recipe.Validate(normalized); err != nil {
		return nil, fmt.Errorf("imported recipe is incomplete: %w", err)
	}
	return &normalized, nil
}

func (c *Clipper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "recipe-planner/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// CleanText strips scripts, navigation and ads from doc and returns the
// remaining body text with whitespace collapsed.
func CleanText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, nav, footer, iframe, noscript, ads, .ads, #ads").Remove()
	return strings.Join(strings.Fields(body.Text()), " ")
}

type promptData struct {
	URL        string
	Text       string
	Categories string
	Units      string
}

func buildPrompt(url, text string) (string, error) {
	tmpl, err := template.New("extract").Parse(extractPrompt)
	if err != nil {
		return "", err
	}
	if len(text) > maxPromptText {
		text = text[:maxPromptText]
	}

	values := func(opts []recipe.Option) string {
		out := make([]string, len(opts))
		for i, o := range opts {
			out[i] = o.Value
		}
		return strings.Join(out, ", ")
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, promptData{
		URL:        url,
		Text:       text,
		Categories: values(recipe.Categories),
		Units:      values(recipe.Units),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *Clipper) extractWithLLM(ctx context.Context, url, text string) (recipe.Recipe, error) {
	if strings.TrimSpace(text) == "" {
		return recipe.Recipe{}, ErrNoRecipe
	}
	prompt, err := buildPrompt(url, text)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to build prompt: %w", err)
	}

	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("ai extraction failed: %w", err)
	}
	log.WithFields(log.Fields{
		"model":             resp.Usage.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Debug("Recipe extracted by model")

	var rec recipe.Recipe
	if err := json.Unmarshal([]byte(llm.StripCodeFence(resp.Content)), &rec); err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to parse AI response: %w", err)
	}
	rec.ID = 0
	rec.Category = recipe.MatchCategory(rec.Category)
	for i, ing := range rec.Ingredients {
		if unit, ok := recipe.CanonicalUnit(ing.Unit); ok {
			rec.Ingredients[i].Unit = unit
		} else if ing.Unit != "" {
			rec.Ingredients[i].Unit = recipe.DefaultUnit
		}
	}
	return rec, nil
}
