package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/models"
)

// ErrNotAuthenticated is returned when a client call is made without
// credentials configured. It is never retried.
var ErrNotAuthenticated = errors.New("not authenticated")

// LMSClient talks to the learning-management system. Pagination and token
// handling stay inside the client; callers get plain record lists.
type LMSClient interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListAssignments(ctx context.Context, courseID string) ([]models.Assignment, error)
	GetAssignment(ctx context.Context, courseID, assignmentID string) (*models.Assignment, error)
}

type lmsClient struct {
	baseURL    string
	token      string
	timeout    time.Duration
	retryCount int
	retryDelay time.Duration
	client     *http.Client
	logger     zerolog.Logger
}

func NewLMSClient(baseURL, token string, timeout time.Duration, retryCount int, retryDelay time.Duration, logger zerolog.Logger) LMSClient {
	return &lmsClient{
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

func (c *lmsClient) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/courses", &courses); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	c.logger.Debug().Int("count", len(courses)).Msg("Listed LMS courses")
	return courses, nil
}

func (c *lmsClient) ListAssignments(ctx context.Context, courseID string) ([]models.Assignment, error) {
	url := fmt.Sprintf("%s/api/v1/courses/%s/assignments", c.baseURL, courseID)

	var assignments []models.Assignment
	if err := c.getJSON(ctx, url, &assignments); err != nil {
		return nil, fmt.Errorf("failed to list assignments for course %s: %w", courseID, err)
	}

	c.logger.Debug().
		Str("course_id", courseID).
		Int("count", len(assignments)).
		Msg("Listed LMS assignments")
	return assignments, nil
}

func (c *lmsClient) GetAssignment(ctx context.Context, courseID, assignmentID string) (*models.Assignment, error) {
	url := fmt.Sprintf("%s/api/v1/courses/%s/assignments/%s", c.baseURL, courseID, assignmentID)

	var assignment models.Assignment
	if err := c.getJSON(ctx, url, &assignment); err != nil {
		return nil, fmt.Errorf("failed to get assignment %s: %w", assignmentID, err)
	}

	return &assignment, nil
}

func (c *lmsClient) getJSON(ctx context.Context, url string, out interface{}) error {
	if c.token == "" {
		return ErrNotAuthenticated
	}

	var lastErr error

	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Str("url", url).Msg("Retrying LMS request")
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
		lastErr = fmt.Errorf("LMS returned status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.retryCount+1, lastErr)
}
