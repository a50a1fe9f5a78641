// Package connectors holds document sources that feed the ingest pipeline.
// The filesystem connector walks and watches local directories and turns
// supported files into ingest requests.
package connectors
