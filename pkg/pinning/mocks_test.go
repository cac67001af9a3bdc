package pinning

import (
	"net/http"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// mockHTTPClient は httpkit.ClientInterface のテスト用モックなのだ。
// 使わないメソッドは埋め込んだインターフェースで解決するのだ。
type mockHTTPClient struct {
	httpkit.ClientInterface
	doFunc   func(req *http.Request) ([]byte, error)
	requests []*http.Request
}

func (m *mockHTTPClient) DoRequest(req *http.Request) ([]byte, error) {
	m.requests = append(m.requests, req)
	if m.doFunc != nil {
		return m.doFunc(req)
	}
	return []byte(`{"IpfsHash":"QmTest","PinSize":4,"Timestamp":"2026-01-01T00:00:00Z"}`), nil
}
