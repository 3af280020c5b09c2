package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/models"
)

// SubmissionClient talks to the assignment-submission service. The bridge
// behind it scrapes the third-party site; from here it is an opaque JSON
// API returning the same record shapes as the LMS.
type SubmissionClient interface {
	ListCourses(ctx context.Context) (*models.SubmissionCourseList, error)
	ListAssignments(ctx context.Context, courseID string) ([]models.Assignment, error)
	UploadSubmission(ctx context.Context, courseID, assignmentID string, files []models.SubmissionFile) (*models.UploadResult, error)
	ListSubmissionHistory(ctx context.Context, courseID, assignmentID string) ([]models.SubmissionRecord, error)
}

type submissionClient struct {
	baseURL    string
	token      string
	timeout    time.Duration
	retryCount int
	retryDelay time.Duration
	client     *http.Client
	logger     zerolog.Logger
}

func NewSubmissionClient(baseURL, token string, timeout time.Duration, retryCount int, retryDelay time.Duration, logger zerolog.Logger) SubmissionClient {
	return &submissionClient{
		baseURL:    baseURL,
		token:      token,
		timeout:    timeout,
		retryCount: retryCount,
		retryDelay: retryDelay,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *submissionClient) ListCourses(ctx context.Context) (*models.SubmissionCourseList, error) {
	var list models.SubmissionCourseList
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/courses", &list); err != nil {
		return nil, fmt.Errorf("failed to list submission courses: %w", err)
	}

	c.logger.Debug().
		Int("instructor", len(list.Instructor)).
		Int("student", len(list.Student)).
		Msg("Listed submission-service courses")
	return &list, nil
}

func (c *submissionClient) ListAssignments(ctx context.Context, courseID string) ([]models.Assignment, error) {
	url := fmt.Sprintf("%s/api/v1/courses/%s/assignments", c.baseURL, courseID)

	var assignments []models.Assignment
	if err := c.getJSON(ctx, url, &assignments); err != nil {
		return nil, fmt.Errorf("failed to list submission assignments for course %s: %w", courseID, err)
	}

	return assignments, nil
}

// UploadSubmission sends the files as a multipart form. A non-error
// result may still carry Success=false when the service rejected the
// upload; the caller inspects the final URL for silent no-ops.
func (c *submissionClient) UploadSubmission(ctx context.Context, courseID, assignmentID string, files []models.SubmissionFile) (*models.UploadResult, error) {
	if c.token == "" {
		return nil, ErrNotAuthenticated
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, bytes.NewReader(f.Content)); err != nil {
			return nil, fmt.Errorf("failed to copy file content: %w", err)
		}
	}
	writer.Close()

	url := fmt.Sprintf("%s/api/v1/courses/%s/assignments/%s/submissions", c.baseURL, courseID, assignmentID)

	req, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("submission service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result models.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Info().
		Str("course_id", courseID).
		Str("assignment_id", assignmentID).
		Bool("success", result.Success).
		Str("url", result.URL).
		Msg("Submission upload completed")

	return &result, nil
}

func (c *submissionClient) ListSubmissionHistory(ctx context.Context, courseID, assignmentID string) ([]models.SubmissionRecord, error) {
	url := fmt.Sprintf("%s/api/v1/courses/%s/assignments/%s/submissions", c.baseURL, courseID, assignmentID)

	var records []models.SubmissionRecord
	if err := c.getJSON(ctx, url, &records); err != nil {
		return nil, fmt.Errorf("failed to list submission history: %w", err)
	}

	return records, nil
}

func (c *submissionClient) getJSON(ctx context.Context, url string, out interface{}) error {
	if c.token == "" {
		return ErrNotAuthenticated
	}

	var lastErr error

	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Str("url", url).Msg("Retrying submission-service request")
			time.Sleep(c.retryDelay * time.Duration(i))
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				lastErr = fmt.Errorf("failed to decode response: %w", err)
				continue
			}
			return nil
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			resp.Body.Close()
			return ErrNotAuthenticated
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("submission service returned status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.retryCount+1, lastErr)
}
