package dataset

import (
	"fmt"

	"github.com/oukeidos/tmxline/internal/logger"
)

// AlpacaRecord is the instruction-tuning shape used by Alpaca-style
// trainers. History is always present, possibly empty.
type AlpacaRecord struct {
	Instruction string      `json:"instruction"`
	Input       string      `json:"input"`
	Output      string      `json:"output"`
	System      string      `json:"system"`
	History     [][2]string `json:"history"`
}

// ConvertAlpaca converts QA or Alpaca-format records (JSON array or JSONL,
// auto-detected) to the translation instruction template.
func ConvertAlpaca(inputPath, outputPath, valOutputPath string, o TemplateOptions) (trainCount, valCount int, err error) {
	if o.Split.Fraction > 0 && valOutputPath == "" {
		return 0, 0, fmt.Errorf("validation output path is required when validation split > 0")
	}

	records, err := LoadArrayOrLines(inputPath)
	if err != nil {
		return 0, 0, err
	}

	train, val, err := split(records, o.Split)
	if err != nil {
		return 0, 0, err
	}
	if o.Split.Fraction > 0 {
		logger.Info("Split data", "train", len(train), "validation", len(val))
	}

	render := func(i int, rec rawRecord) (any, bool) {
		question, content, reasoning, ok := extractAlpacaSource(rec)
		if !ok {
			logger.Warn("Record has an unsupported format; skipping", "record", i+1)
			return nil, false
		}
		output := content
		if o.IncludeReasoning && reasoning != "" {
			output = "<think>" + reasoning + "</think>" + content
		}
		return AlpacaRecord{
			Instruction: fmt.Sprintf("将「%s」翻译成中文", question),
			Output:      output,
			System:      o.systemPrompt(),
			History:     [][2]string{},
		}, true
	}

	trainCount, err = writeRecords(outputPath, train, render)
	if err != nil {
		return trainCount, 0, err
	}
	if o.Split.Fraction > 0 {
		valCount, err = writeRecords(valOutputPath, val, render)
		if err != nil {
			return trainCount, valCount, err
		}
	}
	return trainCount, valCount, nil
}

// extractAlpacaSource accepts the QA shape (question/content) and the
// Alpaca shape (instruction/output). For Alpaca input, the non-empty input
// field wins over the instruction, matching the upstream converter.
func extractAlpacaSource(rec rawRecord) (question, content, reasoning string, ok bool) {
	if q, hasQ := rec.stringField("question"); hasQ {
		if c, hasC := rec.stringField("content"); hasC {
			r, _ := rec.stringField("reasoning_content")
			return q, c, r, true
		}
	}
	if inst, hasInst := rec.stringField("instruction"); hasInst {
		if out, hasOut := rec.stringField("output"); hasOut {
			q := inst
			if in, _ := rec.stringField("input"); in != "" {
				q = in
			}
			return q, out, "", true
		}
	}
	return "", "", "", false
}
