package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func verdictResponse(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	bytes, _ := json.Marshal(payload)
	return string(bytes)
}

func TestGrader_NoAPIKeyUsesHeuristic(t *testing.T) {
	t.Parallel()
	grader := NewGrader("", "https://unused.example", "gpt-4o-mini", time.Second, zerolog.Nop())

	assert.Equal(t, MinDamage, grader.Score(context.Background(), "short"))
	assert.Equal(t, 100, grader.Score(context.Background(), strings.Repeat("a", 50)))
}

func TestGrader_ModelVerdictIsUsed(t *testing.T) {
	t.Parallel()
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, verdictResponse(`{"damage": 120}`))
	})

	grader := NewGrader("test-key", srv.URL, "gpt-4o-mini", time.Second, zerolog.Nop())
	assert.Equal(t, 120, grader.Score(context.Background(), "a decent collaborative answer"))
}

func TestGrader_CodeFencedVerdictIsParsed(t *testing.T) {
	t.Parallel()
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, verdictResponse("```json\n{\"damage\": 85}\n```"))
	})

	grader := NewGrader("test-key", srv.URL, "gpt-4o-mini", time.Second, zerolog.Nop())
	assert.Equal(t, 85, grader.Score(context.Background(), "answer"))
}

func TestGrader_FallbackPaths(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		desc    string
		handler http.HandlerFunc
	}{
		{
			desc: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "overloaded", http.StatusInternalServerError)
			},
		},
		{
			desc: "invalid model JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, verdictResponse("the boss takes heavy damage!"))
			},
		},
		{
			desc: "damage below range",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, verdictResponse(`{"damage": 3}`))
			},
		},
		{
			desc: "damage above range",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, verdictResponse(`{"damage": 9000}`))
			},
		},
		{
			desc: "empty choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"choices": []}`)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			srv := chatServer(t, tc.handler)
			grader := NewGrader("test-key", srv.URL, "gpt-4o-mini", time.Second, zerolog.Nop())

			text := strings.Repeat("b", 40)
			assert.Equal(t, 80, grader.Score(context.Background(), text), "every failure falls back to the length heuristic")
		})
	}
}

func TestGrader_TimeoutFallsBack(t *testing.T) {
	t.Parallel()
	blocked := make(chan struct{})
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	})
	t.Cleanup(func() { close(blocked) })

	grader := NewGrader("test-key", srv.URL, "gpt-4o-mini", time.Millisecond*50, zerolog.Nop())

	start := time.Now()
	damage := grader.Score(context.Background(), "tiny")
	require.Less(t, time.Since(start), time.Second, "scoring must respect its timeout")
	assert.Equal(t, MinDamage, damage)
}
