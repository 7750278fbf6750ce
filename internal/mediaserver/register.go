// Package mediaserver registers the media search MCP tools.
package mediaserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all media search tools on the given MCP server:
// media_search, allsides_search, mediabiasfactcheck_search, youtube_news,
// youtube_transcripts, x_news, substack_news, news_search.
func RegisterTools(server *mcp.Server) {
	registerMediaSearch(server)
	registerAllSidesSearch(server)
	registerMBFCSearch(server)
	registerYouTubeNews(server)
	registerYouTubeTranscripts(server)
	registerXNews(server)
	registerSubstackNews(server)
	registerNewsSearch(server)
}
