// Package tika 提供了一个与 Apache Tika 服务器交互的文本提取客户端。
// PDF 与扫描图片（Tika 内置 OCR）统一走该客户端。
package tika

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"contract-risk-go/internal/config"
)

// ErrUnsupportedFormat 表示文件扩展名不在允许的范围内。
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrUnreadableFile 表示文件内容无法被解码或提取。
var ErrUnreadableFile = errors.New("unreadable file")

// allowedExtensions 是可以送入提取服务的文件后缀白名单。
var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".tif":  {},
	".tiff": {},
}

// Client 是 Tika 服务器的客户端。
type Client struct {
	serverURL string
	client    *http.Client
}

// NewClient 创建一个新的 Tika 客户端实例。
func NewClient(cfg config.TikaConfig) *Client {
	return &Client{
		serverURL: cfg.ServerURL,
		client:    http.DefaultClient,
	}
}

// CheckFormat 校验文件名后缀是否受支持。
func CheckFormat(fileName string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if _, ok := allowedExtensions[ext]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return nil
}

// ExtractText 校验文件格式后调用 Tika 提取全文。
// 提取失败或结果为空时返回 ErrUnreadableFile。
func (c *Client) ExtractText(fileReader io.Reader, fileName string) (string, error) {
	if err := CheckFormat(fileName); err != nil {
		return "", err
	}

	contentType := detectMimeType(fileName)

	req, err := http.NewRequest("PUT", c.serverURL+"/tika", fileReader)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}

	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: 调用 Tika 失败: %v", ErrUnreadableFile, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: Tika 返回错误 [%d]: %s", ErrUnreadableFile, resp.StatusCode, string(body))
	}

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		return "", fmt.Errorf("%w: 读取 Tika 响应失败: %v", ErrUnreadableFile, err)
	}

	text := buf.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: 提取的文本内容为空", ErrUnreadableFile)
	}
	return text, nil
}

// detectMimeType 根据文件扩展名判断 Content-Type
func detectMimeType(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" {
		return "application/octet-stream"
	}
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}
	return mimeType
}
