package model

// Occurrence は 1 行で見つかったマーカーです。桁はすべて UTF-16 コード単位で数えます。
//
// MarkerEnd はトークン直後の空白を最大 1 文字含みます。
// LineEnd は行末の空白を除いた最後の文字の直後を指します。
type Occurrence struct {
	Type         MarkerType `json:"type"`
	Line         int        `json:"line"`
	CommentStart int        `json:"comment_start"`
	MarkerStart  int        `json:"marker_start"`
	MarkerEnd    int        `json:"marker_end"`
	LineEnd      int        `json:"line_end"`
}

// Diagnostic はホストから受け取る診断 1 件です。
type Diagnostic struct {
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Badge は 1 行につき最大 1 つ表示される診断注釈です。
type Badge struct {
	Line     int
	Severity Severity
	Message  string
}
