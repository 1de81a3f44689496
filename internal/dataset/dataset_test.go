package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// tempDir resolves symlinks so the atomic writer's symlink guard does not
// trip on platforms whose temp root is itself a symlink.
func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	return dir
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	trimmed := strings.TrimSuffix(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

const qaArray = `[
	{"question": "Hello", "content": "你好", "reasoning_content": "greeting"},
	{"question": "World", "content": "世界", "reasoning_content": ""}
]`

func TestConvertArray(t *testing.T) {
	dir := tempDir(t)
	in := writeInput(t, dir, "in.json", qaArray)
	out := filepath.Join(dir, "out.jsonl")

	count, err := ConvertArray(in, out, true)
	if err != nil {
		t.Fatalf("ConvertArray failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 records, got %d", count)
	}
	lines := readLines(t, out)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	want := `{"question":"Hello","content":"你好","reasoning_content":"greeting"}`
	if lines[0] != want {
		t.Errorf("expected %s, got %s", want, lines[0])
	}
}

func TestConvertArrayValidation(t *testing.T) {
	dir := tempDir(t)
	out := filepath.Join(dir, "out.jsonl")

	cases := []struct {
		name    string
		content string
		errPart string
	}{
		{"missing field", `[{"question": "q", "content": "c"}]`, "missing required fields: reasoning_content"},
		{"unexpected field", `[{"question": "q", "content": "c", "reasoning_content": "", "extra": 1}]`, "unexpected fields: extra"},
		{"not an array", `{"question": "q"}`, "JSON array"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := writeInput(t, dir, "bad.json", tc.content)
			_, err := ConvertArray(in, out, true)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.errPart) {
				t.Errorf("expected error containing %q, got %v", tc.errPart, err)
			}
		})
	}
}

func TestConvertArrayNoValidate(t *testing.T) {
	dir := tempDir(t)
	in := writeInput(t, dir, "in.json", `[{"question": "q", "content": "c"}]`)
	out := filepath.Join(dir, "out.jsonl")

	count, err := ConvertArray(in, out, false)
	if err != nil {
		t.Fatalf("validation disabled, expected success: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 record, got %d", count)
	}
}

func TestConvertChat(t *testing.T) {
	dir := tempDir(t)
	in := writeInput(t, dir, "in.json", qaArray)
	out := filepath.Join(dir, "out.jsonl")

	trainCount, valCount, err := ConvertChat(in, out, "", TemplateOptions{IncludeReasoning: true})
	if err != nil {
		t.Fatalf("ConvertChat failed: %v", err)
	}
	if trainCount != 2 || valCount != 0 {
		t.Errorf("expected 2 train / 0 val, got %d / %d", trainCount, valCount)
	}

	lines := readLines(t, out)
	var rec ChatRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("failed to decode chat record: %v", err)
	}
	if len(rec.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(rec.Messages))
	}
	if rec.Messages[0].Role != "system" || rec.Messages[0].Content != DefaultSystemPrompt {
		t.Errorf("unexpected system message: %+v", rec.Messages[0])
	}
	if rec.Messages[1].Content != "将「Hello」翻译成中文" {
		t.Errorf("unexpected user message: %q", rec.Messages[1].Content)
	}
	if rec.Messages[2].Content != "<think>greeting</think>你好" {
		t.Errorf("unexpected assistant message: %q", rec.Messages[2].Content)
	}

	// Empty reasoning still gets the tags when reasoning is included.
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("failed to decode chat record: %v", err)
	}
	if rec.Messages[2].Content != "<think></think>世界" {
		t.Errorf("expected empty think tags, got %q", rec.Messages[2].Content)
	}
}

func TestConvertChatWithoutReasoning(t *testing.T) {
	dir := tempDir(t)
	in := writeInput(t, dir, "in.json", qaArray)
	out := filepath.Join(dir, "out.jsonl")

	if _, _, err := ConvertChat(in, out, "", TemplateOptions{}); err != nil {
		t.Fatalf("ConvertChat failed: %v", err)
	}
	lines := readLines(t, out)
	if strings.Contains(lines[0], "<think>") {
		t.Errorf("reasoning disabled, found think tags in %s", lines[0])
	}
}

func TestConvertChatSkipsIncompleteRecords(t *testing.T) {
	dir := tempDir(t)
	in := writeInput(t, dir, "in.json", `[
		{"question": "q1", "content": "c1", "reasoning_content": ""},
		{"question": "q2"},
		{"content": "c3"}
	]`)
	out := filepath.Join(dir, "out.jsonl")

	trainCount, _, err := ConvertChat(in, out, "", TemplateOptions{})
	if err != nil {
		t.Fatalf("ConvertChat failed: %v", err)
	}
	if trainCount != 1 {
		t.Errorf("incomplete records must be skipped, got %d", trainCount)
	}
}

func TestConvertChatCustomSystemPrompt(t *testing.T) {
	dir := tempDir(t)
	in := writeInput(t, dir, "in.json", qaArray)
	out := filepath.Join(dir, "out.jsonl")

	if _, _, err := ConvertChat(in, out, "", TemplateOptions{SystemPrompt: "custom prompt"}); err != nil {
		t.Fatalf("ConvertChat failed: %v", err)
	}
	lines := readLines(t, out)
	var rec ChatRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if rec.Messages[0].Content != "custom prompt" {
		t.Errorf("expected custom prompt, got %q", rec.Messages[0].Content)
	}
}

func TestConvertChatSplitRequiresValPath(t *testing.T) {
	dir := tempDir(t)
	in := writeInput(t, dir, "in.json", qaArray)
	out := filepath.Join(dir, "out.jsonl")

	if _, _, err := ConvertChat(in, out, "", TemplateOptions{Split: SplitOptions{Fraction: 0.5}}); err == nil {
		t.Error("split without a validation path must fail")
	}
}

func TestConvertAlpacaFromQA(t *testing.T) {
	dir := tempDir(t)
	in := writeInput(t, dir, "in.json", qaArray)
	out := filepath.Join(dir, "out.jsonl")

	trainCount, _, err := ConvertAlpaca(in, out, "", TemplateOptions{IncludeReasoning: true})
	if err != nil {
		t.Fatalf("ConvertAlpaca failed: %v", err)
	}
	if trainCount != 2 {
		t.Errorf("expected 2 records, got %d", trainCount)
	}

	lines := readLines(t, out)
	var rec AlpacaRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if rec.Instruction != "将「Hello」翻译成中文" {
		t.Errorf("unexpected instruction: %q", rec.Instruction)
	}
	if rec.Output != "<think>greeting</think>你好" {
		t.Errorf("unexpected output: %q", rec.Output)
	}
	if rec.History == nil || len(rec.History) != 0 {
		t.Errorf("history must be present and empty, got %v", rec.History)
	}

	// Empty reasoning stays unwrapped in the Alpaca template.
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if rec.Output != "世界" {
		t.Errorf("expected bare output for empty reasoning, got %q", rec.Output)
	}
}

func TestConvertAlpacaFromAlpacaJSONL(t *testing.T) {
	dir := tempDir(t)
	in := writeInput(t, dir, "in.jsonl",
		`{"instruction": "translate this", "input": "", "output": "翻译"}
{"instruction": "ignored", "input": "preferred text", "output": "首选"}
`)
	out := filepath.Join(dir, "out.jsonl")

	trainCount, _, err := ConvertAlpaca(in, out, "", TemplateOptions{})
	if err != nil {
		t.Fatalf("ConvertAlpaca failed: %v", err)
	}
	if trainCount != 2 {
		t.Errorf("expected 2 records, got %d", trainCount)
	}

	lines := readLines(t, out)
	var rec AlpacaRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if rec.Instruction != "将「translate this」翻译成中文" {
		t.Errorf("empty input should fall back to instruction, got %q", rec.Instruction)
	}
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if rec.Instruction != "将「preferred text」翻译成中文" {
		t.Errorf("non-empty input should win over instruction, got %q", rec.Instruction)
	}
}

func TestSplitReproducibleWithSeed(t *testing.T) {
	records := make([]rawRecord, 10)
	for i := range records {
		records[i] = rawRecord{"question": json.RawMessage(`"q"`)}
	}
	seed := int64(42)
	opts := SplitOptions{Fraction: 0.3, Seed: &seed}

	train1, val1, err := split(records, opts)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	train2, val2, err := split(records, opts)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(val1) != 3 || len(train1) != 7 {
		t.Errorf("expected 7/3 split, got %d/%d", len(train1), len(val1))
	}
	if len(train1) != len(train2) || len(val1) != len(val2) {
		t.Error("same seed must produce the same partition sizes")
	}
}

func TestSplitZeroFraction(t *testing.T) {
	records := []rawRecord{{}, {}}
	train, val, err := split(records, SplitOptions{})
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(train) != 2 || len(val) != 0 {
		t.Errorf("zero fraction keeps everything in train, got %d/%d", len(train), len(val))
	}
}

func TestSplitValidation(t *testing.T) {
	if _, _, err := split(nil, SplitOptions{Fraction: -0.1}); err == nil {
		t.Error("negative fraction must fail")
	}
	if _, _, err := split(nil, SplitOptions{Fraction: 1.0}); err == nil {
		t.Error("fraction of 1.0 must fail")
	}
}

func TestChatSplitWritesBothFiles(t *testing.T) {
	dir := tempDir(t)
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < 10; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"question": "q", "content": "c", "reasoning_content": ""}`)
	}
	b.WriteString("]")
	in := writeInput(t, dir, "in.json", b.String())
	out := filepath.Join(dir, "train.jsonl")
	valOut := filepath.Join(dir, "val.jsonl")

	seed := int64(7)
	trainCount, valCount, err := ConvertChat(in, out, valOut, TemplateOptions{
		Split: SplitOptions{Fraction: 0.2, Seed: &seed},
	})
	if err != nil {
		t.Fatalf("ConvertChat failed: %v", err)
	}
	if trainCount != 8 || valCount != 2 {
		t.Errorf("expected 8/2 split, got %d/%d", trainCount, valCount)
	}
	if got := len(readLines(t, out)); got != 8 {
		t.Errorf("expected 8 train lines, got %d", got)
	}
	if got := len(readLines(t, valOut)); got != 2 {
		t.Errorf("expected 2 validation lines, got %d", got)
	}
}

func TestLoadArrayOrLines(t *testing.T) {
	dir := tempDir(t)

	arrayPath := writeInput(t, dir, "array.json", `[{"question": "q"}]`)
	records, err := LoadArrayOrLines(arrayPath)
	if err != nil {
		t.Fatalf("array form failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}

	linesPath := writeInput(t, dir, "lines.jsonl", `{"question": "a"}
{"question": "b"}
`)
	records, err = LoadArrayOrLines(linesPath)
	if err != nil {
		t.Fatalf("jsonl form failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}

	badPath := writeInput(t, dir, "bad.txt", "not json at all\n")
	if _, err := LoadArrayOrLines(badPath); err == nil {
		t.Error("unparseable input must fail")
	}
}
