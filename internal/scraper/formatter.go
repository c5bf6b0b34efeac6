package scraper

import (
	"time"

	"md-article-parser/internal/config"
	"md-article-parser/internal/models"
)

// Formatter turns extractor records into ArticleInfo values
type Formatter struct {
	wordsPerMinute int
	now            func() time.Time
}

func NewFormatter(wordsPerMinute int, now func() time.Time) *Formatter {
	if wordsPerMinute <= 0 {
		wordsPerMinute = config.DefaultWordsPerMinute
	}
	if now == nil {
		now = time.Now
	}
	return &Formatter{wordsPerMinute: wordsPerMinute, now: now}
}

// Format applies the result defaults and computes word count and reading time from the Markdown text
func (f *Formatter) Format(article *models.Article, pageURL string) *models.ArticleInfo {
	wordCount := CountWords(article.TextContent)

	return &models.ArticleInfo{
		URL:         pageURL,
		Title:       orDefault(article.Title, DefaultTitle),
		Excerpt:     article.Excerpt,
		HTMLContent: article.Content,
		MDContent:   article.TextContent,
		WordCount:   wordCount,
		ReadingTime: ReadingTime(wordCount, f.wordsPerMinute),
		SiteName:    article.SiteName,
		Author:      article.Byline,
		Language:    orDefault(article.Language, DefaultLanguage),
		Timestamp:   f.now(),
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
