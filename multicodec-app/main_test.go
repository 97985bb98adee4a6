package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compose-network/multicodec/multicodec-app/config"
)

const sampleText = "Live long and prosper"

func runCmd(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestFrameCmd_Hex(t *testing.T) {
	out, err := runCmd(t, []byte(sampleText), "frame", "--hex")
	require.NoError(t, err)

	want := "0x811e" + hex.EncodeToString([]byte(sampleText))
	assert.Equal(t, want, strings.TrimSpace(out))
}

func TestFrameCmd_Raw(t *testing.T) {
	out, err := runCmd(t, []byte("{}"), "frame", "--codec", "json")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x81, 0x1e, '{', '}'}, []byte(out))
}

func TestFrameCmd_UnknownCodec(t *testing.T) {
	_, err := runCmd(t, []byte("x"), "frame", "--codec", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown codec")
}

func TestFrameCmd_InputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"message":"hi"}`), 0o600))

	out, err := runCmd(t, nil, "frame", "--in", path)
	require.NoError(t, err)
	assert.Equal(t, "\x81\x1e"+`{"message":"hi"}`, out)
}

func TestInspectCmd(t *testing.T) {
	framed := "0x811e" + hex.EncodeToString([]byte(sampleText))

	out, err := runCmd(t, []byte(framed+"\n"), "inspect", "--hex-input")
	require.NoError(t, err)

	var report inspectReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Known)
	assert.Equal(t, "json", report.Codec)
	assert.Equal(t, uint64(0xF01), report.Code)
	assert.Equal(t, "0xf01", report.CodeHex)
	assert.Equal(t, "0x811e", report.Prefix)
	assert.Equal(t, 2, report.PrefixLen)
	assert.Equal(t, len(sampleText), report.PayloadLen)
}

func TestInspectCmd_Malformed(t *testing.T) {
	_, err := runCmd(t, []byte{0x80}, "inspect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed varint")
}

func TestStripCmd(t *testing.T) {
	out, err := runCmd(t, append([]byte{0x81, 0x1e}, sampleText...), "strip")
	require.NoError(t, err)
	assert.Equal(t, sampleText, out)
}

func TestStripCmd_UnknownCodec(t *testing.T) {
	in := []byte("2a6869") // code 0x2a then "hi"

	_, err := runCmd(t, in, "strip", "--hex-input")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	out, err := runCmd(t, in, "strip", "--hex-input", "--force")
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestStripCmd_MaxInput(t *testing.T) {
	_, err := runCmd(t, bytes.Repeat([]byte{0x01}, 32), "strip", "--max-input", "8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 8 bytes")
}

func TestCodecsCmd(t *testing.T) {
	out, err := runCmd(t, nil, "codecs")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Regexp(t, `json\s+0xf01\s+2\s+application/json`, out)
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    "+Version)
}

func TestConfigDumpCmd(t *testing.T) {
	out, err := runCmd(t, nil, "config", "dump", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "listen_addr:")
	assert.Contains(t, out, "8081")
	assert.Contains(t, out, "level: debug")
	assert.Contains(t, out, "default: json")
}

func TestApp_ServeAndShutdown(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.API.ListenAddr = "127.0.0.1:0"
	cfg.Metrics.ListenAddr = "127.0.0.1:0"

	app, err := NewApp(cfg, zerolog.New(io.Discard))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		return app.apiServer.Addr() != nil && app.metricsServer.Addr() != nil
	}, 5*time.Second, 10*time.Millisecond)

	apiURL := "http://" + app.apiServer.Addr().String()
	resp, err := http.Post(apiURL+"/v1/frames/json", "application/octet-stream", strings.NewReader(sampleText))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "\x81\x1e"+sampleText, string(body))

	metricsURL := "http://" + app.metricsServer.Addr().String() + cfg.Metrics.Path
	resp, err = http.Get(metricsURL)
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `multicodec_frames_total{codec="json",operation="add_prefix",outcome="ok"} 1`)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("app did not shut down")
	}
}
