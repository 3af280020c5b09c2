package service

import (
	"fmt"
	"regexp"
	"strings"
)

// The two recognized request shapes. Anything else is rejected rather
// than guessed.
var (
	assignmentFromCoursePattern = regexp.MustCompile(`(?i)^\s*(.+?)\s+(?:from|for|in)\s+(.+?)\s*$`)
	courseFirstPattern          = regexp.MustCompile(`(?i)^\s*([a-zA-Z]+\s*\d+[a-zA-Z]?)\s+(.+?)\s*$`)
	completePrefixPattern       = regexp.MustCompile(`(?i)^complete\s+`)
)

type parsedRequest struct {
	CourseQuery     string
	AssignmentQuery string
}

// parseRequest splits a natural-language request into a course query and
// an assignment query. Tried in order: "<assignment> from|for|in
// <course>" (a leading "complete " on the assignment phrase is dropped),
// then "<course code> <rest>".
func parseRequest(request string) (*parsedRequest, error) {
	if m := assignmentFromCoursePattern.FindStringSubmatch(request); m != nil {
		assignmentPhrase := completePrefixPattern.ReplaceAllString(m[1], "")
		return &parsedRequest{
			CourseQuery:     strings.TrimSpace(m[2]),
			AssignmentQuery: strings.TrimSpace(assignmentPhrase),
		}, nil
	}

	if m := courseFirstPattern.FindStringSubmatch(request); m != nil {
		return &parsedRequest{
			CourseQuery:     strings.TrimSpace(m[1]),
			AssignmentQuery: strings.TrimSpace(m[2]),
		}, nil
	}

	return nil, fmt.Errorf(`could not parse request %q: use "<assignment> from <course>" (e.g. "hw 3 from cs 170") or "<course code> <assignment>" (e.g. "cs170 homework 3")`, request)
}
