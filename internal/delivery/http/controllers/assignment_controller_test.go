package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagecrew/internal/delivery/http/helpers"
	"stagecrew/internal/delivery/http/middleware"
	"stagecrew/internal/domain"
)

const (
	testSlotID       = "6f1c2a4e-9d3b-4f6a-8c2e-1b7d5a9e3c41"
	testAssignmentID = "a4b8c1d2-3e4f-4a5b-9c6d-7e8f9a0b1c2d"
)

// fakeAssignmentService implements domain.AssignmentService for handler tests.
type fakeAssignmentService struct {
	createResult *domain.AssignmentReceipt
	createErr    error
	cancelResult *domain.Assignment
	cancelErr    error
	markResult   *domain.Assignment
	markErr      error

	lastSlotID       string
	lastCandidate    domain.Candidate
	lastAssignmentID string
	lastMarkStatus   domain.AssignmentStatus
	lastActor        domain.Actor
}

func (f *fakeAssignmentService) CreateAssignment(ctx context.Context, slotID string, candidate domain.Candidate) (*domain.AssignmentReceipt, error) {
	f.lastSlotID = slotID
	f.lastCandidate = candidate
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeAssignmentService) CancelAssignment(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	f.lastAssignmentID = assignmentID
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	return f.cancelResult, nil
}

func (f *fakeAssignmentService) MarkAttendance(ctx context.Context, assignmentID string, status domain.AssignmentStatus, actor domain.Actor) (*domain.Assignment, error) {
	f.lastAssignmentID = assignmentID
	f.lastMarkStatus = status
	f.lastActor = actor
	if f.markErr != nil {
		return nil, f.markErr
	}
	return f.markResult, nil
}

func TestAssignmentController_Create(t *testing.T) {
	receipt := &domain.AssignmentReceipt{
		Assignment: &domain.Assignment{
			ID:        "as-1",
			SlotID:    testSlotID,
			Candidate: domain.NewInternalCandidate("p-1"),
			Status:    domain.AssignmentCommitted,
		},
		Warnings: []*domain.PersonConflict{{
			Commitment: &domain.PersonCommitment{AssignmentID: "as-other", EventName: "Saturday show"},
		}},
	}

	tests := []struct {
		name         string
		slotID       string
		body         string
		fake         *fakeAssignmentService
		wantStatus   int
		wantErrCode  string
		checkReceipt func(t *testing.T, got domain.AssignmentReceipt)
	}{
		{
			name:       "registers and reports warnings",
			slotID:     testSlotID,
			body:       `{"candidate":{"kind":"internal","person_id":"p-1"}}`,
			fake:       &fakeAssignmentService{createResult: receipt},
			wantStatus: http.StatusCreated,
			checkReceipt: func(t *testing.T, got domain.AssignmentReceipt) {
				require.NotNil(t, got.Assignment)
				assert.Equal(t, "as-1", got.Assignment.ID)
				require.Len(t, got.Warnings, 1)
				require.NotNil(t, got.Warnings[0].Commitment)
				assert.Equal(t, "as-other", got.Warnings[0].Commitment.AssignmentID)
			},
		},
		{
			name:        "slot id must be a uuid",
			slotID:      "slot-1",
			body:        `{"candidate":{"kind":"internal","person_id":"p-1"}}`,
			fake:        &fakeAssignmentService{},
			wantStatus:  http.StatusBadRequest,
			wantErrCode: helpers.ErrCodeBadRequest,
		},
		{
			name:        "candidate with both ids",
			slotID:      testSlotID,
			body:        `{"candidate":{"kind":"internal","person_id":"p-1","registrant_id":"r-1"}}`,
			fake:        &fakeAssignmentService{},
			wantStatus:  http.StatusBadRequest,
			wantErrCode: helpers.ErrCodeBadRequest,
		},
		{
			name:        "slot full",
			slotID:      testSlotID,
			body:        `{"candidate":{"kind":"internal","person_id":"p-1"}}`,
			fake:        &fakeAssignmentService{createErr: domain.ErrCapacityExceeded},
			wantStatus:  http.StatusConflict,
			wantErrCode: helpers.ErrCodeCapacityExceeded,
		},
		{
			name:        "already registered",
			slotID:      testSlotID,
			body:        `{"candidate":{"kind":"internal","person_id":"p-1"}}`,
			fake:        &fakeAssignmentService{createErr: domain.ErrDuplicateAssignment},
			wantStatus:  http.StatusConflict,
			wantErrCode: helpers.ErrCodeDuplicate,
		},
		{
			name:        "unknown slot",
			slotID:      testSlotID,
			body:        `{"candidate":{"kind":"external","registrant_id":"r-1"}}`,
			fake:        &fakeAssignmentService{createErr: domain.ErrNotFound},
			wantStatus:  http.StatusNotFound,
			wantErrCode: helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAssignmentController(testLogger, tt.fake)
			req := httptest.NewRequest(http.MethodPost, "/slots/"+tt.slotID+"/assignments", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("slotID", tt.slotID)
			rr := httptest.NewRecorder()

			ctrl.Create(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantErrCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantErrCode, envelope.Error.Code)
				return
			}
			require.Nil(t, envelope.Error)
			dataBytes, err := json.Marshal(envelope.Data)
			require.NoError(t, err)
			var got domain.AssignmentReceipt
			require.NoError(t, json.Unmarshal(dataBytes, &got))
			tt.checkReceipt(t, got)
			assert.Equal(t, tt.slotID, tt.fake.lastSlotID)
			assert.Equal(t, domain.CandidateInternal, tt.fake.lastCandidate.Kind)
		})
	}
}

func TestAssignmentController_MarkAttendance(t *testing.T) {
	organizer := domain.Actor{ID: "staff-1", Roles: []string{domain.RoleOrganizer}}

	tests := []struct {
		name        string
		body        string
		fake        *fakeAssignmentService
		noActor     bool
		wantStatus  int
		wantErrCode string
	}{
		{
			name: "marks attended",
			body: `{"status":"attended"}`,
			fake: &fakeAssignmentService{markResult: &domain.Assignment{
				ID:     testAssignmentID,
				Status: domain.AssignmentAttended,
			}},
			wantStatus: http.StatusOK,
		},
		{
			name:        "cancelled is not an attendance status",
			body:        `{"status":"cancelled"}`,
			fake:        &fakeAssignmentService{},
			wantStatus:  http.StatusBadRequest,
			wantErrCode: helpers.ErrCodeBadRequest,
		},
		{
			name:        "no actor in context",
			body:        `{"status":"attended"}`,
			fake:        &fakeAssignmentService{},
			noActor:     true,
			wantStatus:  http.StatusUnauthorized,
			wantErrCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:        "member tier refused",
			body:        `{"status":"no_show"}`,
			fake:        &fakeAssignmentService{markErr: domain.ErrForbidden},
			wantStatus:  http.StatusForbidden,
			wantErrCode: helpers.ErrCodeForbidden,
		},
		{
			name:        "shift has not started",
			body:        `{"status":"attended"}`,
			fake:        &fakeAssignmentService{markErr: domain.ErrPolicyWindowViolation},
			wantStatus:  http.StatusUnprocessableEntity,
			wantErrCode: helpers.ErrCodePolicyWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAssignmentController(testLogger, tt.fake)
			req := httptest.NewRequest(http.MethodPost, "/assignments/"+testAssignmentID+"/attendance", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("assignmentID", testAssignmentID)
			if !tt.noActor {
				req = req.WithContext(middleware.SetActor(req.Context(), organizer))
			}
			rr := httptest.NewRecorder()

			ctrl.MarkAttendance(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantErrCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantErrCode, envelope.Error.Code)
				return
			}
			require.Nil(t, envelope.Error)
			assert.Equal(t, testAssignmentID, tt.fake.lastAssignmentID)
			assert.Equal(t, domain.AssignmentAttended, tt.fake.lastMarkStatus)
			assert.Equal(t, organizer.ID, tt.fake.lastActor.ID)
		})
	}
}
