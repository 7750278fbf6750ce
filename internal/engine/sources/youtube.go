package sources

// YouTube implementation is split across three files by responsibility:
//   youtube_innertube.go  — Innertube API types, constants, and low-level HTTP primitives
//   youtube_transcript.go — transcript fetching (watch page + engagement panel + ANDROID player)
//   youtube_search.go     — channel-scoped video search via ytInitialData scraping,
//                           long descriptions, and char-cap trimming
