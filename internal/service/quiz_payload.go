package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/typemnm/Mornoningo/internal/models"
)

const (
	minRemoteOptions = 2
	maxRemoteOptions = 4
)

var errNoQuestions = errors.New("no usable questions in generator response")

// ParseQuizPayload normalises a generator reply into questions and notes. It accepts a
// {"questions": [...], "notes": ...} object or a bare question array, optionally wrapped in a
// markdown code fence.
func ParseQuizPayload(raw string) (*GeneratedQuestionSet, error) {
	body := extractJSON(raw)
	var data interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, fmt.Errorf("decode generator json: %w", err)
	}

	var items []interface{}
	var notesRaw interface{}
	switch v := data.(type) {
	case map[string]interface{}:
		list, ok := v["questions"].([]interface{})
		if !ok {
			return nil, errors.New("generator json has no questions array")
		}
		items = list
		notesRaw = v["notes"]
	case []interface{}:
		items = v
	default:
		return nil, errors.New("generator json must be an object or array")
	}

	questions := make([]models.Question, 0, len(items))
	for idx, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if q, ok := normalizeQuestion(obj, idx); ok {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, errNoQuestions
	}
	return &GeneratedQuestionSet{Questions: questions, Notes: NormalizeNotes(notesRaw)}, nil
}

func normalizeQuestion(obj map[string]interface{}, idx int) (models.Question, bool) {
	rawOpts, ok := obj["options"].([]interface{})
	if !ok {
		rawOpts, _ = obj["opts"].([]interface{})
	}
	options := make([]string, 0, maxRemoteOptions)
	for _, o := range rawOpts {
		if len(options) == maxRemoteOptions {
			break
		}
		if text := strings.TrimSpace(stringify(o)); text != "" {
			options = append(options, text)
		}
	}
	if len(options) < minRemoteOptions {
		return models.Question{}, false
	}

	correct, ok := toInt(obj["correctIndex"])
	if !ok {
		correct, _ = toInt(obj["correct"])
	}

	text := firstString(obj, "question", "q")
	if text == "" {
		text = fmt.Sprintf("Question %d", idx+1)
	}

	return models.Question{
		Q:           text,
		Options:     options,
		Correct:     clampInt(correct, 0, len(options)-1),
		Explanation: firstString(obj, "explanation"),
	}, true
}

// NormalizeNotes turns the generator's notes into blank-line separated sections. Strings are
// split per line; list items that are objects are kept as compact JSON.
func NormalizeNotes(raw interface{}) string {
	var parts []string
	switch v := raw.(type) {
	case string:
		for _, line := range strings.Split(v, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
	case []interface{}:
		for _, item := range v {
			if text := strings.TrimSpace(stringify(item)); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.Index(text, "\n"); nl >= 0 {
			text = text[nl+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if json.Valid([]byte(text)) {
		return text
	}
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "}]")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

func firstString(obj map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
