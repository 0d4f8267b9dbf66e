package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting run %s (%s mode)":                                       "実行 %s を開始します (%s モード)",
		"Source: %s, %.2f fps, %d frames":                                 "入力: %s, %.2f fps, %d フレーム",
		"Plan: extract %d frames, keep every %d, output %.2f fps (%.2fs)": "計画: %d フレームを抽出, %d フレームごとに保持, 出力 %.2f fps (%.2f秒)",
		"Extracting frames":                                               "フレームを抽出中",
		"Extracted %d frames":                                             "%d フレームを抽出しました",
		"Extracted %d of %d planned frames":                               "予定 %[2]d フレームのうち %[1]d フレームを抽出しました",
		"Kept %d frames at %.2f fps":                                      "%d フレームを %.2f fps で保持しました",
		"Transforming %d frames":                                          "%d フレームを変換中",
		"%d of %d frames used the fallback transformer":                   "%[2]d フレーム中 %[1]d フレームで代替変換を使用しました",
		"Assembling video at %.2f fps":                                    "%.2f fps で動画を組み立て中",
		"Output saved to %s":                                              "出力を %s に保存しました",

		// Orchestration failures
		"Failed to extract frames: %s":         "フレームの抽出に失敗しました: %s",
		"Failed to resample frames: %s":        "フレームの間引きに失敗しました: %s",
		"Failed to transform frames: %s":       "フレームの変換に失敗しました: %s",
		"Failed to assemble video: %s":         "動画の組み立てに失敗しました: %s",
		"Failed to release workspace lock: %s": "作業領域のロック解除に失敗しました: %s",
		"Failed to clean up workspaces: %s":    "作業領域の削除に失敗しました: %s",
		"Failed to write debug output: %s":     "デバッグ出力の書き込みに失敗しました: %s",

		// Extract stage
		"Removed %d stale files from %s":         "%[2]s から古いファイルを %[1]d 件削除しました",
		"Extracting up to %d frames at %.2f fps": "最大 %d フレームを %.2f fps で抽出中",
		"Decode stopped after %d frames: %v":     "%d フレームでデコードが停止しました: %v",

		// Resample stage
		"Skip is %d, keeping all %d frames":            "間隔 %d のため全 %d フレームを保持します",
		"Kept every %d frame: %d retained, %d removed": "%d フレームごとに保持: %d 保持, %d 削除",

		// Transform stage
		"Transforming %d frames with %d workers (%s mode)": "%d フレームを %d ワーカーで変換中 (%s モード)",
		"%v, using fallback":                               "%v, 代替変換を使用します",
		"Transform completed: %d frames, %d fallbacks":     "変換完了: %d フレーム, 代替 %d 件",

		// Assemble stage
		"Encoding %d frames at %s, %.2f fps": "%d フレームを %s, %.2f fps でエンコード中",
		"Resized %d frames to %s":            "%d フレームを %s にリサイズしました",

		// Adapters
		"Removed %d files from %s": "%[2]s から %[1]d 件のファイルを削除しました",
		"Decoding %s at %dx%d":     "%s を %dx%d でデコード中",
		"Probed %s from container boxes: %.3f fps, %d frames, %dx%d": "%s をコンテナから解析: %.3f fps, %d フレーム, %dx%d",
		"Probed %s with ffprobe: %.3f fps, %d frames, %dx%d":         "%s を ffprobe で解析: %.3f fps, %d フレーム, %dx%d",
		"Container probe unavailable for %s, using ffprobe: %v":      "%s のコンテナ解析ができないため ffprobe を使用します: %v",
	})
}
