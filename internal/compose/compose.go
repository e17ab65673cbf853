// Package compose builds the generation prompt for each template variant and
// enforces the hard output-length budget of the target platform.
package compose

import (
	"fmt"
	"strings"

	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/config"
)

// TruncationMarker is appended when a draft exceeds the output budget.
const TruncationMarker = "…"

// FixedTags go out with every post, before the article-specific SEO tags the
// model adds on its own.
var FixedTags = []string{
	"令和幕府瓦版",
	"時事ニュース",
	"日本経済",
	"政治ニュース",
	"ニュース解説",
	"庶民目線ニュース",
	"速報",
	"解説",
	"トレンド",
	"日本の今",
	"Xニュース",
	"今日のニュース",
}

// SystemInstruction frames the model's role for every request.
const SystemInstruction = "You are a careful Japanese editor for X posts."

// BuildPrompt assembles the full generation prompt for one article.
func BuildPrompt(title, summary, link string, variant config.Variant) string {
	var b strings.Builder

	b.WriteString("あなたは「令和幕府瓦版」シリーズの編集者。事実誤認の断定を避け、煽り表現を控える。\n")
	b.WriteString("出力はX（旧Twitter）用の見やすい改行で、280字±30を目安に作る。\n\n")
	b.WriteString("形式：\n")
	b.WriteString("1) 導入（瓦版×現代の語り口）\n")
	b.WriteString("2) 要点（簡潔に）\n")
	b.WriteString("3) 瓦版屋のひとこと（1行）\n")
	b.WriteString("4) ハッシュタグ：固定12個 + 記事から固有名詞ベースのSEOタグ 最大10（日本語優先）\n")
	b.WriteString("※ URLは末尾に短く置いてよい（省略可）\n\n")
	b.WriteString("固定タグ（12）:\n")
	b.WriteString("#" + strings.Join(FixedTags, " #"))
	b.WriteString("\n\n")

	if variant == config.VariantYasashii {
		b.WriteString("口調：小学生にもわかる“やさしい瓦版”。難語はかみくだく。\n\n")
	} else {
		b.WriteString("口調：通常版（瓦版風×現代の読みやすさ）。\n\n")
	}

	fmt.Fprintf(&b, "# 入力\nタイトル: %s\n要旨: %s\n出典URL: %s\n\n", title, summary, link)
	b.WriteString("# 出力要件\n")
	b.WriteString("- 本文は日本語\n")
	b.WriteString("- 280字±30（ハッシュタグ含む全体で収まるよう調整）\n")
	b.WriteString("- ハッシュタグは固定12 + SEOタグ（最大10、固有名詞中心）\n")
	b.WriteString("- ハッシュタグは文末にまとめる\n")
	b.WriteString("- 政治的断定・攻撃的表現は避ける\n")

	return b.String()
}

// FallbackText is the precomputed post used when generation fails and the
// fallback policy is active. It stays well under the output budget.
func FallbackText(variant config.Variant, title, link string) string {
	lead := "【瓦版速報】"
	if variant == config.VariantYasashii {
		lead = "【やさしい瓦版】"
	}
	return fmt.Sprintf("%s%s\n%s\n#%s #%s", lead, title, link, FixedTags[0], FixedTags[1])
}

// Clip enforces the hard length budget in runes. Text over the budget is cut
// to budget-1 runes plus a single truncation marker; text at or under the
// budget is returned unchanged.
func Clip(text string, budget int) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	return string(runes[:budget-1]) + TruncationMarker
}
