package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

const (
	DefaultPinataAPI = "https://api.pinata.cloud"

	pathPinFile  = "/pinning/pinFileToIPFS"
	pathPinJSON  = "/pinning/pinJSONToIPFS"
	pathTestAuth = "/data/testAuthentication"
)

// Credentials は Pinata の認証情報です。JWT があれば API キーより優先します。
type Credentials struct {
	JWT       string
	APIKey    string
	APISecret string
}

// Valid はいずれかの認証方式が使えるかを返します。
func (c Credentials) Valid() bool {
	return c.JWT != "" || (c.APIKey != "" && c.APISecret != "")
}

func (c Credentials) apply(req *http.Request) {
	if c.JWT != "" {
		req.Header.Set("Authorization", "Bearer "+c.JWT)
		return
	}
	req.Header.Set("pinata_api_key", c.APIKey)
	req.Header.Set("pinata_secret_api_key", c.APISecret)
}

// PinataClient は Pinata の pinning API クライアントです。
type PinataClient struct {
	httpClient httpkit.ClientInterface
	creds      Credentials
	apiURL     string
	gateway    string
}

// PinataOption は PinataClient の任意設定です。
type PinataOption func(*PinataClient)

// WithAPIURL は API のベース URL を差し替えます。
func WithAPIURL(u string) PinataOption {
	return func(c *PinataClient) { c.apiURL = strings.TrimRight(u, "/") }
}

// WithGateway はゲートウェイ URL を差し替えます。
func WithGateway(u string) PinataOption {
	return func(c *PinataClient) { c.gateway = u }
}

// NewPinataClient は依存関係を注入して PinataClient を初期化します。
func NewPinataClient(httpClient httpkit.ClientInterface, creds Credentials, opts ...PinataOption) (*PinataClient, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if !creds.Valid() {
		return nil, fmt.Errorf("pinata credentials are required (JWT or API key/secret)")
	}

	c := &PinataClient{
		httpClient: httpClient,
		creds:      creds,
		apiURL:     DefaultPinataAPI,
		gateway:    DefaultGateway,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type pinataMetadata struct {
	Name string `json:"name"`
}

// PinFile は multipart/form-data で pinFileToIPFS を呼び出します。
func (c *PinataClient) PinFile(ctx context.Context, name string, data []byte) (*Pin, error) {
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)

	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("multipartの作成に失敗しました: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("multipartの作成に失敗しました: %w", err)
	}

	meta, err := json.Marshal(pinataMetadata{Name: name})
	if err != nil {
		return nil, err
	}
	if err := mw.WriteField("pinataMetadata", string(meta)); err != nil {
		return nil, fmt.Errorf("multipartの作成に失敗しました: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("multipartの作成に失敗しました: %w", err)
	}

	pin, err := c.post(ctx, pathPinFile, body.Bytes(), mw.FormDataContentType())
	if err != nil {
		return nil, fmt.Errorf("Pinataへのファイルピン留めに失敗しました: %w", err)
	}
	return pin, nil
}

// PinJSON は pinJSONToIPFS を呼び出します。
func (c *PinataClient) PinJSON(ctx context.Context, name string, v any) (*Pin, error) {
	payload, err := json.Marshal(struct {
		Content  any            `json:"pinataContent"`
		Metadata pinataMetadata `json:"pinataMetadata"`
	}{Content: v, Metadata: pinataMetadata{Name: name}})
	if err != nil {
		return nil, fmt.Errorf("JSONのエンコードに失敗しました: %w", err)
	}

	pin, err := c.post(ctx, pathPinJSON, payload, "application/json")
	if err != nil {
		return nil, fmt.Errorf("PinataへのJSONピン留めに失敗しました: %w", err)
	}
	return pin, nil
}

// Authenticate は testAuthentication で資格情報を確認します。
func (c *PinataClient) Authenticate(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+pathTestAuth, nil)
	if err != nil {
		return err
	}
	c.creds.apply(req)

	if _, err := c.httpClient.DoRequest(req); err != nil {
		return fmt.Errorf("Pinataの認証に失敗しました: %w", err)
	}
	return nil
}

// GatewayURL はゲートウェイ上の URL を返します。
func (c *PinataClient) GatewayURL(hash string) string {
	return gatewayURL(c.gateway, hash)
}

func (c *PinataClient) post(ctx context.Context, path string, body []byte, contentType string) (*Pin, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	c.creds.apply(req)

	respBody, err := c.httpClient.DoRequest(req)
	if err != nil {
		return nil, err
	}

	var pin Pin
	if err := json.Unmarshal(respBody, &pin); err != nil {
		return nil, fmt.Errorf("Pinataの応答を解析できません: %w", err)
	}
	if pin.Hash == "" {
		return nil, fmt.Errorf("Pinataの応答にIpfsHashがありません")
	}
	return &pin, nil
}
