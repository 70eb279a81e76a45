package kantor

// Version is the interpreter version reported by the CLI and the
// language server.
const Version = "0.3.0"
