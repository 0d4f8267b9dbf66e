// Package main provides localization for the scribbler CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Configuration": "設定",
		"Logging":       "ログ",
		"Transform":     "変換",
		"Video":         "動画",
		"Output":        "出力",
		"Debug":         "デバッグ",

		// Commands
		"Turn videos into scribbled animations":             "動画を落書きアニメーションに変換",
		"Scribble a video":                                  "動画に落書きする",
		"Show video metadata and output frame rate options": "動画の情報と出力フレームレートの候補を表示",
		"Remove intermediate frames from the workspaces":    "作業領域の中間フレームを削除",
		"Show version information":                          "バージョン情報を表示",
		"scribbler version %s":                              "scribbler バージョン %s",

		// Flags
		"Path to a YAML config file":                                    "YAML設定ファイルのパス",
		"Log level (debug, info, warn, error)":                          "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                       "全てのログ出力を抑制",
		"Transform mode (ai, experimental)":                             "変換モード（ai, experimental）",
		"Seconds each AI request waits after completing":                "AIリクエスト完了後の待機秒数",
		"Only process the first N seconds":                              "先頭N秒のみ処理",
		"Output frame rate (default: native)":                           "出力フレームレート（デフォルト: 元動画と同じ）",
		"Output video path (default: output/scribbled_<name>.mp4)":      "出力動画のパス（デフォルト: output/scribbled_<名前>.mp4）",
		"Output execution summary to file (Markdown format)":            "実行サマリーをファイルに出力（Markdown形式）",
		"Write plan, metadata and outcomes JSON to the debug directory": "計画・メタデータ・結果のJSONをデバッグディレクトリに出力",
		"Serve Prometheus metrics on this address during the run":       "実行中にこのアドレスでPrometheusメトリクスを公開",

		// Runtime messages
		"Error: %s":                     "エラー: %s",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Serving metrics on %s":         "%s でメトリクスを公開中",
		"Metrics server stopped: %v":    "メトリクスサーバーが停止しました: %v",
		"Done in %s":                    "%s で完了しました",
		"Summary saved to %s":           "サマリーを %s に保存しました",
		"Failed to write summary: %s":   "サマリーの書き込みに失敗しました: %s",
		"Workspaces cleaned":            "作業領域を削除しました",
		"a video argument is required":  "動画の引数が必要です",

		// Progress labels
		"Extracting":   "抽出",
		"Resampling":   "間引き",
		"Transforming": "変換",
		"Assembling":   "組み立て",

		// Info tables
		"File":               "ファイル",
		"Codec":              "コーデック",
		"Output FPS options": "出力FPSの候補",
		"FPS":                "FPS",
		"Keep every":         "間隔",

		// Summary content
		"Scribble Summary": "落書きサマリー",
		"Run ID":           "実行ID",
		"Generated At":     "生成日時",
		"Input":            "入力",
		"Settings":         "設定",
		"Result":           "結果",
		"Stage Timings":    "ステージ別所要時間",
		"Item":             "項目",
		"Value":            "値",
		"Source":           "入力元",
		"Frame Rate":       "フレームレート",
		"Frames":           "フレーム数",
		"Resolution":       "解像度",
		"Duration":         "再生時間",
		"Mode":             "モード",
		"Model":            "モデル",
		"Target FPS":       "出力FPS",
		"Frame Skip":       "間引き間隔",
		"Duration Cutoff":  "処理時間の上限",
		"Concurrency":      "並列数",
		"Request Delay":    "リクエスト間隔",
		"Extracted Frames": "抽出フレーム数",
		"Retained Frames":  "保持フレーム数",
		"Fallback Frames":  "代替変換フレーム数",
		"Resized Frames":   "リサイズしたフレーム数",
		"Speed":            "速度",
		"File Size":        "ファイルサイズ",
		"Total":            "合計",
		"Unknown":          "不明",
		"Generated by":     "生成:",
		"extract":          "抽出",
		"resample":         "間引き",
		"transform":        "変換",
		"assemble":         "組み立て",
	})
}
