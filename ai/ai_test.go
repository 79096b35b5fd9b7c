package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lvillar/offerdeck/model"
)

// fakeOpenAI serves canned Responses and Images API answers.
func fakeOpenAI(t *testing.T, reply string, imageB64 string, seen *map[string]any) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/responses", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if seen != nil {
			json.Unmarshal(body, seen)
		}
		out := map[string]any{
			"id":         "resp_1",
			"object":     "response",
			"created_at": 1,
			"status":     "completed",
			"model":      "gpt-4o",
			"output": []any{map[string]any{
				"type":   "message",
				"id":     "msg_1",
				"status": "completed",
				"role":   "assistant",
				"content": []any{map[string]any{
					"type":        "output_text",
					"text":        reply,
					"annotations": []any{},
				}},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/images/generations", func(w http.ResponseWriter, r *http.Request) {
		data := []any{}
		if imageB64 != "" {
			data = append(data, map[string]any{"b64_json": imageB64})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"created": 1, "data": data})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "test", BaseURL: srv.URL + "/"}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{APIKey: "  "}, nil); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestFillClampsLists(t *testing.T) {
	reply := fillReply{
		OfferSubtitle: "Рост продаж",
		CTAText:       "Звоните",
	}
	for i := 0; i < 5; i++ {
		reply.Metrics = append(reply.Metrics, model.Metric{Indicator: "m"})
		reply.Cases = append(reply.Cases, model.CaseStudy{Title: "c"})
	}
	for i := 0; i < 7; i++ {
		reply.ProcessSteps = append(reply.ProcessSteps, model.Step{Title: "s"})
	}
	for i := 0; i < 6; i++ {
		reply.CompanyStats = append(reply.CompanyStats, model.CompanyStat{Value: "1"})
	}
	raw, _ := json.Marshal(reply)

	var seen map[string]any
	c := fakeOpenAI(t, string(raw), "", &seen)
	p, err := c.Fill(context.Background(), "кофейня")
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}

	if len(p.Metrics) != 3 || len(p.Cases) != 3 || len(p.ProcessSteps) != 7 || len(p.CompanyStats) != 4 {
		t.Fatalf("unexpected list sizes %d/%d/%d/%d", len(p.Metrics), len(p.Cases), len(p.ProcessSteps), len(p.CompanyStats))
	}
	if p.OfferSubtitle == nil || *p.OfferSubtitle != "Рост продаж" {
		t.Fatal("subtitle not filled")
	}
	if p.SolutionTitle != nil {
		t.Fatal("blank fields must not overwrite the document")
	}

	text, _ := seen["text"].(map[string]any)
	format, _ := text["format"].(map[string]any)
	if format["type"] != "json_schema" || format["strict"] != true {
		t.Fatalf("request did not ask for strict JSON schema output: %v", text)
	}
	if input, _ := seen["input"].(string); !strings.Contains(input, "кофейня") {
		t.Fatalf("topic missing from prompt: %q", input)
	}
}

func TestFillRejectsBadReply(t *testing.T) {
	c := fakeOpenAI(t, "not json", "", nil)
	if _, err := c.Fill(context.Background(), "topic"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := c.Fill(context.Background(), " "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestFillSchemaIsStrict(t *testing.T) {
	schema, err := fillSchema()
	if err != nil {
		t.Fatalf("fillSchema: %v", err)
	}
	if schema["additionalProperties"] != false {
		t.Fatalf("additionalProperties = %v", schema["additionalProperties"])
	}
	required, _ := schema["required"].([]any)
	if len(required) != 12 {
		t.Fatalf("expected every field required, got %v", required)
	}
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	c := fakeOpenAI(t, "", base64.StdEncoding.EncodeToString(buf.Bytes()), nil)

	ref, err := c.Generate(context.Background(), "a cat")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(string(ref), "data:image/png;base64,") {
		t.Fatalf("unexpected ref %.40q", ref)
	}
}

func TestGenerateNoImage(t *testing.T) {
	c := fakeOpenAI(t, "", "", nil)
	if _, err := c.Generate(context.Background(), "a cat"); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}

	c = fakeOpenAI(t, "", base64.StdEncoding.EncodeToString([]byte("text")), nil)
	if _, err := c.Generate(context.Background(), "a cat"); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage for non-image payload, got %v", err)
	}
}

func TestProcessDiagramPrompt(t *testing.T) {
	got, err := ProcessDiagramPrompt(model.Default().ProcessSteps)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Анализ -> Стратегия -> Внедрение") {
		t.Fatalf("prompt = %q", got)
	}
	if _, err := ProcessDiagramPrompt(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
