package trace

// DocumentSchema is the JSON Schema for the trace documents this
// module emits: complete events only, category "function", pid 0.
const DocumentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["otherData", "traceEvents"],
  "properties": {
    "otherData": {
      "type": "object",
      "description": "Document level metadata"
    },
    "traceEvents": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["cat", "dur", "name", "ph", "pid", "tid", "ts"],
        "properties": {
          "cat": {
            "type": "string",
            "enum": ["function"],
            "description": "Event category"
          },
          "dur": {
            "type": "integer",
            "minimum": 0,
            "description": "Duration in microseconds"
          },
          "name": {
            "type": "string",
            "description": "Scope name"
          },
          "ph": {
            "type": "string",
            "enum": ["X"],
            "description": "Complete event phase"
          },
          "pid": {
            "type": "integer",
            "enum": [0],
            "description": "Process id, always zero"
          },
          "tid": {
            "type": "integer",
            "minimum": 0,
            "description": "Hashed goroutine id"
          },
          "ts": {
            "type": "integer",
            "description": "Start timestamp in microseconds"
          }
        }
      }
    }
  }
}`
