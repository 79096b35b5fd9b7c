package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"github.com/lvillar/offerdeck/model"
)

const fillPrompt = `Сгенерируй данные для коммерческого предложения на тему: "%s".
Ответ должен быть строго на русском языке.
Заполни структуру данными, которые выглядят профессионально и реалистично.
Не более 3 показателей, 3 кейсов, 8 этапов работы и 4 фактов о компании.`

// fillReply is the structured answer requested from the model.
type fillReply struct {
	OfferSubtitle       string              `json:"offerSubtitle" jsonschema:"description=One line subtitle under the proposal title"`
	CurrentSituation    string              `json:"currentSituation" jsonschema:"description=Client's current situation; one point per line"`
	ClientRequest       string              `json:"clientRequest" jsonschema:"description=What the client wants to achieve; one point per line"`
	SolutionTitle       string              `json:"solutionTitle"`
	SolutionDescription string              `json:"solutionDescription"`
	Metrics             []model.Metric      `json:"metrics" jsonschema:"description=Expected changes: indicator with current and future values and the cause"`
	Cases               []model.CaseStudy   `json:"cases"`
	ProcessSteps        []model.Step        `json:"processSteps"`
	Bonuses             string              `json:"bonuses"`
	CTAText             string              `json:"ctaText" jsonschema:"description=Call to action"`
	CompanyDescription  string              `json:"companyDescription"`
	CompanyStats        []model.CompanyStat `json:"companyStats" jsonschema:"description=Short numeric facts about the company"`
}

// Patch converts the reply into a clamped patch. Blank strings and empty
// lists leave the document field untouched.
func (r fillReply) Patch() model.Patch {
	str := func(s string) *string {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return &s
	}
	p := model.Patch{
		OfferSubtitle:       str(r.OfferSubtitle),
		CurrentSituation:    str(r.CurrentSituation),
		ClientRequest:       str(r.ClientRequest),
		SolutionTitle:       str(r.SolutionTitle),
		SolutionDescription: str(r.SolutionDescription),
		Bonuses:             str(r.Bonuses),
		CTAText:             str(r.CTAText),
		CompanyDescription:  str(r.CompanyDescription),
	}
	if len(r.Metrics) > 0 {
		p.Metrics = r.Metrics
	}
	if len(r.Cases) > 0 {
		p.Cases = r.Cases
	}
	if len(r.ProcessSteps) > 0 {
		p.ProcessSteps = r.ProcessSteps
	}
	if len(r.CompanyStats) > 0 {
		p.CompanyStats = r.CompanyStats
	}
	return p.Clamp()
}

func fillSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(fillReply{}))
	if err != nil {
		return nil, fmt.Errorf("ai: marshal schema: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(schemaJSON, &schema); err != nil {
		return nil, fmt.Errorf("ai: unmarshal schema: %w", err)
	}
	return schema, nil
}

// Fill implements TextFiller.
func (c *Client) Fill(ctx context.Context, topic string) (model.Patch, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return model.Patch{}, ErrEmptyInput
	}
	schema, err := fillSchema()
	if err != nil {
		return model.Patch{}, err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.textModel),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(fmt.Sprintf(fillPrompt, topic)),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "commercial_proposal",
					Strict:      param.NewOpt(true),
					Schema:      schema,
					Description: param.NewOpt("Content of a commercial proposal"),
				},
			},
		},
	}

	start := time.Now()
	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return model.Patch{}, fmt.Errorf("ai: text fill: %w", err)
	}
	content := resp.OutputText()
	if content == "" {
		return model.Patch{}, ErrEmptyReply
	}

	var reply fillReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return model.Patch{}, fmt.Errorf("ai: parsing text fill: %w", err)
	}
	c.logger.Info("text fill complete", "model", c.textModel, "duration", time.Since(start))
	return reply.Patch(), nil
}
