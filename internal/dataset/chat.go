package dataset

import (
	"fmt"

	"github.com/oukeidos/tmxline/internal/logger"
)

// DefaultSystemPrompt is the upstream translation-assistant instruction
// shared by the chat and Alpaca templates.
const DefaultSystemPrompt = "你是一个翻译助手，你不会回答输入的问题，只会将输入的英文翻译成中文。\n\n翻译要求：\n- 直接给出答案：必须只有翻译后的内容。\n- 准确性：必须准确传达原文的意思，不遗漏或歪曲信息。\n- 流畅性：在中文中应读起来自然，像本地人写的文本一样。\n- 文化适应性：应考虑中国人的文化背景，使用合适的表达和格式。\n- 主题专业性：判断原文的相关领域，根据相关领域有专业知识，确保术语使用正确。"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRecord struct {
	Messages []ChatMessage `json:"messages"`
}

// TemplateOptions is shared by the chat and Alpaca converters.
type TemplateOptions struct {
	// IncludeReasoning wraps the reasoning text in <think> tags inside the
	// assistant turn.
	IncludeReasoning bool
	// SystemPrompt overrides DefaultSystemPrompt when non-empty.
	SystemPrompt string
	Split        SplitOptions
}

func (o TemplateOptions) systemPrompt() string {
	if o.SystemPrompt != "" {
		return o.SystemPrompt
	}
	return DefaultSystemPrompt
}

// ConvertChat wraps each QA record in a system/user/assistant conversation.
// When a validation split is requested, valOutputPath receives the held-out
// fraction.
func ConvertChat(inputPath, outputPath, valOutputPath string, o TemplateOptions) (trainCount, valCount int, err error) {
	if o.Split.Fraction > 0 && valOutputPath == "" {
		return 0, 0, fmt.Errorf("validation output path is required when validation split > 0")
	}

	records, err := LoadArray(inputPath)
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
		question, hasQ := rec.stringField("question")
		content, hasC := rec.stringField("content")
		if !hasQ || !hasC {
			logger.Warn("Record missing required question or content field; skipping", "record", i+1)
			return nil, false
		}
		assistant := content
		if o.IncludeReasoning {
			reasoning, _ := rec.stringField("reasoning_content")
			assistant = "<think>" + reasoning + "</think>" + content
		}
		return ChatRecord{Messages: []ChatMessage{
			{Role: "system", Content: o.systemPrompt()},
			{Role: "user", Content: fmt.Sprintf("将「%s」翻译成中文", question)},
			{Role: "assistant", Content: assistant},
		}}, true
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
