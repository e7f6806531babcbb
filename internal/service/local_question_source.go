package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/typemnm/Mornoningo/internal/models"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
)

const localOptionCount = 4

var decoyPool = []string{
	"Data structure comparison",
	"Time complexity definition",
	"Algorithm optimization",
	"Network layers",
	"Database normalization",
	"Machine learning basics",
}

// LocalQuestionSource synthesises one question per topic of a document's notes.
type LocalQuestionSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLocalQuestionSource constructs the fallback source. Pass a seeded rand for reproducible shuffles.
func NewLocalQuestionSource(rnd *rand.Rand) *LocalQuestionSource {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &LocalQuestionSource{rnd: rnd}
}

func (s *LocalQuestionSource) Name() string { return "local" }

func (s *LocalQuestionSource) FetchQuestions(ctx context.Context, doc models.Document) (*GeneratedQuestionSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	questions, err := s.Generate(doc)
	if err != nil {
		return nil, err
	}
	return &GeneratedQuestionSet{Questions: questions, Source: s.Name()}, nil
}

// Generate builds the question set without a context.
func (s *LocalQuestionSource) Generate(doc models.Document) ([]models.Question, error) {
	topics := Topics(doc)
	if len(topics) == 0 {
		return nil, appErrors.ErrNoTopics
	}
	questions := make([]models.Question, 0, len(topics))
	for idx, topic := range topics {
		questions = append(questions, s.buildQuestion(topic, doc.Title, idx))
	}
	return questions, nil
}

// Topics returns the trimmed non-empty note lines without list markers, or the title stem
// when the notes are empty.
func Topics(doc models.Document) []string {
	var topics []string
	for _, line := range strings.Split(doc.Notes, "\n") {
		if topic := stripBullet(strings.TrimSpace(line)); topic != "" {
			topics = append(topics, topic)
		}
	}
	if len(topics) > 0 {
		return topics
	}
	if stem := models.TitleStem(doc.Title); stem != "" {
		return []string{stem}
	}
	return nil
}

func stripBullet(line string) string {
	for _, marker := range []string{"- ", "* ", "• ", "-", "•"} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker))
		}
	}
	return line
}

func (s *LocalQuestionSource) buildQuestion(topic, title string, seed int) models.Question {
	options := append([]string{topic}, decoysFor(topic, seed)...)

	s.mu.Lock()
	s.rnd.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	s.mu.Unlock()

	correct := 0
	for i, opt := range options {
		if opt == topic {
			correct = i
			break
		}
	}
	return models.Question{
		Q:           fmt.Sprintf("Which key concept is covered in %s?", title),
		Options:     options,
		Correct:     correct,
		Explanation: fmt.Sprintf("%s is a key concept of this material.", topic),
	}
}

// decoysFor walks the pool round-robin from seed, skipping the topic itself.
func decoysFor(topic string, seed int) []string {
	filtered := make([]string, 0, len(decoyPool))
	for _, d := range decoyPool {
		if d != topic {
			filtered = append(filtered, d)
		}
	}
	decoys := make([]string, 0, localOptionCount-1)
	for i := 0; i < len(filtered) && len(decoys) < localOptionCount-1; i++ {
		decoys = append(decoys, filtered[(seed+i)%len(filtered)])
	}
	return decoys
}
