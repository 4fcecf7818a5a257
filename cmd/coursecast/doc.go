// Command coursecast is the CLI for generating chunked educational videos
// from a topic. It creates a narration script, runs the generation pipeline,
// and manages the local job history.
package main
