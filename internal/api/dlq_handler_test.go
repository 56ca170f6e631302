package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sungwon/chirper/internal/queue"
)

type mockDLQ struct {
	ids []string
	n   int
	err error
}

func (m *mockDLQ) MoveToDLQ(context.Context, *queue.Message, string) error { return nil }

func (m *mockDLQ) Reprocess(_ context.Context, ids []string) (int, error) {
	m.ids = ids
	return m.n, m.err
}

func TestDLQReprocessHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		dlq        *mockDLQ
		wantStatus int
		wantError  string
	}{
		{"invalid json", "not json", &mockDLQ{}, http.StatusBadRequest, "invalid request body"},
		{"empty ids", `{"message_ids":[]}`, &mockDLQ{}, http.StatusBadRequest, "message_ids is required and must not be empty"},
		{"too many ids", `{"message_ids":[` + strings.TrimSuffix(strings.Repeat(`"x",`, maxReprocessIDs+1), ",") + `]}`,
			&mockDLQ{}, http.StatusBadRequest, "too many message_ids"},
		{"backend failure", `{"message_ids":["1-0"]}`, &mockDLQ{err: errors.New("redis down")}, http.StatusInternalServerError, "reprocess failed"},
		{"success", `{"message_ids":["1-0","2-0"]}`, &mockDLQ{n: 2}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/dlq/reprocess", strings.NewReader(tt.body))

			DLQReprocessHandler(tt.dlq).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d; body: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantError != "" {
				var resp map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp["error"] != tt.wantError {
					t.Errorf("expected error %q, got %q", tt.wantError, resp["error"])
				}
				return
			}

			var resp dlqReprocessResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Reprocessed != 2 || resp.Total != 2 {
				t.Errorf("unexpected response %+v", resp)
			}
			if len(tt.dlq.ids) != 2 || tt.dlq.ids[0] != "1-0" {
				t.Errorf("ids passed = %v", tt.dlq.ids)
			}
		})
	}
}
