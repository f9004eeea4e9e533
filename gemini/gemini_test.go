// SPDX-License-Identifier: GPL-3.0-only

package gemini

import (
	"errors"
	"testing"
)

func TestSelectModelFlashTasks(t *testing.T) {
	for _, task := range []TaskType{TaskChat, TaskTool, TaskTranscription, TaskQuiz, TaskFlashcard} {
		if got := SelectModel(task, 1_000_000, 10, true); got != defaultFlashModel {
			t.Errorf("SelectModel(%s) = %q, want flash model", task, got)
		}
	}
}

func TestSelectModelStudyGuide(t *testing.T) {
	tests := []struct {
		name          string
		contentLength int
		sourceCount   int
		isBook        bool
		want          string
	}{
		{"small single source", 10_000, 1, false, defaultFlashModel},
		{"book", 10_000, 1, true, defaultProModel},
		{"large content", 60_000, 1, false, defaultProModel},
		{"many sources", 10_000, 3, false, defaultProModel},
	}
	for _, tc := range tests {
		if got := SelectModel(TaskStudyGuide, tc.contentLength, tc.sourceCount, tc.isBook); got != tc.want {
			t.Errorf("%s: SelectModel = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !isRetryable(errors.New("rpc error: code 429 resource exhausted")) {
		t.Error("429 error should be retryable")
	}
	if !isRetryable(errors.New("got HTTP 503 service unavailable")) {
		t.Error("503 error should be retryable")
	}
	if isRetryable(errors.New("invalid request")) {
		t.Error("generic error should not be retryable")
	}
}
