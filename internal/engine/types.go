package engine

import (
	"github.com/phyten/humanpp/internal/model"
	"github.com/phyten/humanpp/internal/progress"
)

// Item はファイル走査で見つかった 1 件のマーカーです。行と桁は 1 始まりです。
type Item struct {
	Type      model.MarkerType `json:"type"`
	Token     string           `json:"token"`
	Lang      string           `json:"lang,omitempty"`
	File      string           `json:"file"`
	Line      int              `json:"line"`
	Column    int              `json:"column"`
	EndColumn int              `json:"end_column"`
	Text      string           `json:"text,omitempty"`
}

// ItemError は 1 ファイルの処理に失敗した際の情報を表す
type ItemError struct {
	File    string `json:"file"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Options はファイル走査の実行オプション。
// Rules が nil の場合、opts.NormalizeAndValidate が Markers と Types から組み立てる。
type Options struct {
	Root             string
	Paths            []string
	Excludes         []string
	ExcludeTypical   bool
	DetectLangs      []string
	Jobs             int
	MaxFileBytes     int
	WithText         bool
	Types            []string
	NoKeywords       bool
	Markers          RuleOptions       `json:"-"`
	Rules            *Rules            `json:"-"`
	ProgressObserver progress.Observer `json:"-"`
}

// Result は出力
type Result struct {
	Items      []Item      `json:"items"`
	Files      int         `json:"files"`
	Total      int         `json:"total"`
	ElapsedMS  int64       `json:"elapsed_ms"`
	Errors     []ItemError `json:"errors,omitempty"`
	ErrorCount int         `json:"error_count"`
}
