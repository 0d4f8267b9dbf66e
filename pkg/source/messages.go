package source

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		"Multiple videos found:":  "複数の動画が見つかりました:",
		"Select a video (1-%d): ": "動画を選択してください (1-%d): ",
		"Invalid selection.":      "無効な選択です。",
	})
}
