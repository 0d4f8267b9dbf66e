package gemini

import "encoding/json"

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

// part is sent with snake_case keys. Replies use camelCase, and some
// gateways echo snake_case, so decoding accepts both.
type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inline_data,omitempty"`
}

func (p *part) UnmarshalJSON(data []byte) error {
	var aux struct {
		Text       string `json:"text"`
		InlineData *blob  `json:"inlineData"`
		Snake      *blob  `json:"inline_data"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Text = aux.Text
	p.InlineData = aux.InlineData
	if p.InlineData == nil {
		p.InlineData = aux.Snake
	}
	return nil
}

type blob struct {
	MimeType string `json:"mime_type,omitempty"`
	Data     string `json:"data"`
}

func (b *blob) UnmarshalJSON(data []byte) error {
	var aux struct {
		MimeType string `json:"mimeType"`
		Snake    string `json:"mime_type"`
		Data     string `json:"data"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.MimeType = aux.MimeType
	if b.MimeType == "" {
		b.MimeType = aux.Snake
	}
	b.Data = aux.Data
	return nil
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback"`
}

type candidate struct {
	Content      *content `json:"content"`
	FinishReason string   `json:"finishReason"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}
