package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultAPIBase = "https://generativelanguage.googleapis.com/v1beta"

// Client Gemini 生成接口客户端
type Client struct {
	apiKey     string
	apiBase    string
	textModel  string
	imageModel string
	httpClient *http.Client
}

func NewClient(apiKey, apiBase, textModel, imageModel string) *Client {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if textModel == "" {
		textModel = "gemini-2.0-flash"
	}
	if imageModel == "" {
		imageModel = "gemini-2.0-flash-exp"
	}
	return &Client{
		apiKey:     apiKey,
		apiBase:    apiBase,
		textModel:  textModel,
		imageModel: imageModel,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
	// 响应里的字段名是驼峰
	RespInline *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type,omitempty"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) generate(ctx context.Context, model string, req *generateRequest) (*generateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.apiBase, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if genResp.Error != nil {
		return nil, fmt.Errorf("gemini error: %s", genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	return &genResp, nil
}

// firstText 取第一段文本输出
func firstText(resp *generateResponse) (string, error) {
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text, nil
		}
	}
	return "", fmt.Errorf("gemini response contains no text part")
}

// firstImage 取第一段图片输出并解码
func firstImage(resp *generateResponse) ([]byte, error) {
	for _, part := range resp.Candidates[0].Content.Parts {
		data := part.RespInline
		if data == nil {
			data = part.InlineData
		}
		if data == nil || data.Data == "" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(data.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode gemini image data: %w", err)
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("gemini response contains no image part")
}

// Chat 普通文本对话
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, c.textModel, &generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}
	return firstText(resp)
}

// GenerateImage 文生图，返回图片字节
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := c.generate(ctx, c.imageModel, &generateRequest{
		Contents:         []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	})
	if err != nil {
		return nil, err
	}
	return firstImage(resp)
}

// EditImage 图生图：按提示词修改输入图片
func (c *Client) EditImage(ctx context.Context, image []byte, mimeType, prompt string) ([]byte, error) {
	resp, err := c.generate(ctx, c.imageModel, &generateRequest{
		Contents: []generateContent{{Parts: []generatePart{
			{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
			{Text: prompt},
		}}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	})
	if err != nil {
		return nil, err
	}
	return firstImage(resp)
}

// AnalyzeMedia 分析图片/语音/视频等媒体内容，返回文字描述
func (c *Client) AnalyzeMedia(ctx context.Context, media []byte, mimeType, prompt string) (string, error) {
	resp, err := c.generate(ctx, c.textModel, &generateRequest{
		Contents: []generateContent{{Parts: []generatePart{
			{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(media)}},
			{Text: prompt},
		}}},
	})
	if err != nil {
		return "", err
	}
	return firstText(resp)
}
