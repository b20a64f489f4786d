// Package api fetches shader definitions from Shadertoy.com so they can be
// imported into the local library. Only code passes (common + image) are
// supported; channel inputs such as textures or buffers are reported as
// unsupported because the standalone uniform contract has no iChannels.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Hannyel0/shaderbench/store"
)

const shadertoyAPIURL = "https://www.shadertoy.com/api/v1"

var httpClient = &http.Client{
	Transport: &headerTransport{Transport: http.DefaultTransport},
}

type headerTransport struct {
	Transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "shaderbench (https://github.com/Hannyel0/shaderbench)")
	return t.Transport.RoundTrip(req)
}

// ShadertoyResponse mirrors the API's top-level payload.
type ShadertoyResponse struct {
	Shader *Shader `json:"Shader"`
	Error  string  `json:"Error,omitempty"`
}

type Shader struct {
	Info       ShaderInfo   `json:"info"`
	RenderPass []RenderPass `json:"renderpass"`
}

type ShaderInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type RenderPass struct {
	Inputs []Input `json:"inputs"`
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
}

type Input struct {
	Channel int    `json:"channel"`
	CType   string `json:"ctype"`
	Src     string `json:"src"`
}

// ShaderCode is the usable result of a fetch: the image pass body with any
// common code prepended, ready for validation and conversion.
type ShaderCode struct {
	ID       string
	Title    string
	Common   string
	Image    string
	Complete bool
}

// Body returns the fragment shader body to validate and convert.
func (c *ShaderCode) Body() string {
	if c.Common == "" {
		return c.Image
	}
	return c.Common + "\n" + c.Image
}

// ShaderFromID fetches a shader's JSON by ID or shadertoy.com URL, consulting
// a disk cache first when useCache is set.
func ShaderFromID(apikey, idOrURL string, useCache bool) (*ShadertoyResponse, error) {
	shaderID := idOrURL
	if strings.Contains(shaderID, "/") {
		shaderID = filepath.Base(strings.TrimSuffix(shaderID, "/"))
	}

	var cachePath string
	if useCache {
		cacheDir, err := store.DefaultDir("api-cache")
		if err != nil {
			return nil, fmt.Errorf("could not get cache directory: %w", err)
		}
		cachePath = filepath.Join(cacheDir, shaderID+".json")
		if data, err := os.ReadFile(cachePath); err == nil {
			var cached ShadertoyResponse
			if err := json.Unmarshal(data, &cached); err == nil && cached.Shader != nil {
				return &cached, nil
			}
			log.Printf("Warning: ignoring unreadable cache entry %s", cachePath)
		}
	}

	if apikey == "" {
		apikey = os.Getenv("SHADERTOY_KEY")
	}
	if apikey == "" {
		return nil, fmt.Errorf("no API key supplied and SHADERTOY_KEY not set. See https://www.shadertoy.com/howto#q2")
	}

	req, err := http.NewRequest("GET", fmt.Sprintf("%s/shaders/%s", shadertoyAPIURL, shaderID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	q := req.URL.Query()
	q.Add("key", apikey)
	req.URL.RawQuery = q.Encode()

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to shadertoy API failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to load shader %s, status code: %d", shaderID, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader response: %w", err)
	}
	var shaderResp ShadertoyResponse
	if err := json.Unmarshal(body, &shaderResp); err != nil {
		return nil, fmt.Errorf("failed to decode shader JSON: %w", err)
	}
	if shaderResp.Error != "" {
		return nil, fmt.Errorf("shadertoy API error for %s: %s (is the shader public+api?)", shaderID, shaderResp.Error)
	}
	if shaderResp.Shader == nil {
		return nil, fmt.Errorf("invalid JSON response: 'Shader' key is missing")
	}

	if useCache {
		data, err := json.Marshal(&shaderResp)
		if err == nil {
			if err := os.WriteFile(cachePath, data, 0644); err != nil {
				log.Printf("Warning: failed to cache shader at %s: %v", cachePath, err)
			}
		}
	}
	return &shaderResp, nil
}

// CodeFromResponse extracts the common and image pass code from a fetched
// shader. Buffer/sound passes and channel inputs are not renderable here;
// they mark the result incomplete.
func CodeFromResponse(shaderResp *ShadertoyResponse) (*ShaderCode, error) {
	if shaderResp == nil || shaderResp.Shader == nil {
		return nil, fmt.Errorf("shader data must have a 'Shader' key")
	}

	code := &ShaderCode{
		ID:       shaderResp.Shader.Info.ID,
		Complete: true,
	}
	info := shaderResp.Shader.Info
	code.Title = fmt.Sprintf("%q by %s", info.Name, info.Username)

	for _, rPass := range shaderResp.Shader.RenderPass {
		switch rPass.Type {
		case "image":
			code.Image = rPass.Code
			if len(rPass.Inputs) > 0 {
				log.Printf("Warning: image pass uses %d channel input(s); they are not supported", len(rPass.Inputs))
				code.Complete = false
			}
		case "common":
			code.Common = rPass.Code
		default:
			log.Printf("Warning: unsupported render pass type: %s", rPass.Type)
			code.Complete = false
		}
	}

	if code.Image == "" {
		return nil, fmt.Errorf("shader %s has no image pass", code.ID)
	}
	return code, nil
}
