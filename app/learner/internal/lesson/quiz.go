package lesson

import (
	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
)

var (
	ErrAlreadyAnswered = errors.New("lesson: question already answered")
	ErrNotAnswered     = errors.New("lesson: question not answered yet")
	ErrQuizFinished    = errors.New("lesson: quiz finished")
	ErrQuizInactive    = errors.New("lesson: quiz has no questions")
)

// Answer 一次作答的判定
type Answer struct {
	Correct       bool
	CorrectAnswer string
}

// Result 测验结果
type Result struct {
	Score int
	Total int
}

// Quiz 单选测验，不是并发安全的
type Quiz struct {
	questions  []kidapi.Question
	index      int
	selected   *string
	score      int
	result     *Result
	onComplete func(score, total int)
}

// NewQuiz 创建测验，questions 为空时测验不可用
func NewQuiz(questions []kidapi.Question, onComplete func(score, total int)) *Quiz {
	return &Quiz{questions: questions, onComplete: onComplete}
}

// Active 是否有题目
func (q *Quiz) Active() bool {
	return len(q.questions) > 0
}

// Current 当前题目与序号 (从 0 开始)
func (q *Quiz) Current() (kidapi.Question, int, bool) {
	if !q.Active() || q.result != nil {
		return kidapi.Question{}, q.index, false
	}
	return q.questions[q.index], q.index, true
}

// Total 题目数
func (q *Quiz) Total() int {
	return len(q.questions)
}

// Score 当前得分
func (q *Quiz) Score() int {
	return q.score
}

// Select 选择答案，每题只能选一次
func (q *Quiz) Select(option string) (Answer, error) {
	cur, _, ok := q.Current()
	if !ok {
		if !q.Active() {
			return Answer{}, ErrQuizInactive
		}
		return Answer{}, ErrQuizFinished
	}
	if q.selected != nil {
		return Answer{}, ErrAlreadyAnswered
	}
	q.selected = &option
	correct := option == cur.CorrectAnswer
	if correct {
		q.score++
	}
	return Answer{Correct: correct, CorrectAnswer: cur.CorrectAnswer}, nil
}

// Next 进入下一题；最后一题之后返回结果并触发一次完成回调
func (q *Quiz) Next() (*Result, error) {
	if _, _, ok := q.Current(); !ok {
		if !q.Active() {
			return nil, ErrQuizInactive
		}
		return q.result, ErrQuizFinished
	}
	if q.selected == nil {
		return nil, ErrNotAnswered
	}
	q.selected = nil
	if q.index+1 < len(q.questions) {
		q.index++
		return nil, nil
	}

	q.result = &Result{Score: q.score, Total: len(q.questions)}
	if q.onComplete != nil {
		q.onComplete(q.result.Score, q.result.Total)
	}
	return q.result, nil
}

// Result 已完成时的结果
func (q *Quiz) Result() (*Result, bool) {
	return q.result, q.result != nil
}

// Retry 从头再来
func (q *Quiz) Retry() {
	q.index = 0
	q.selected = nil
	q.score = 0
	q.result = nil
}
