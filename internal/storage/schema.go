package storage

import "github.com/santhosh-tekuri/jsonschema/v5"

// metricListSchema describes a perfspect metrics file as read by the event
// checker: every record needs a name and an expression.
var metricListSchema = `
{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "name": {
        "description": "Metric name.",
        "type": "string"
      },
      "expression": {
        "description": "Formula with events written as [EVENT] or [EVENT:modifier].",
        "type": "string"
      }
    },
    "required": ["name", "expression"]
  }
}`

// metricRecordsSchema describes a perfspect metrics file as read during
// reconciliation, where only the name is looked at.
var metricRecordsSchema = `
{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "name": {
        "description": "Metric name used to match records.",
        "type": "string"
      }
    },
    "required": ["name"]
  }
}`

// perfmonSchema describes a perfmon metrics file. Metrics itself is not
// required here; its absence is reported separately.
var perfmonSchema = `
{
  "type": "object",
  "properties": {
    "Metrics": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "LegacyName": {"type": "string"},
          "Formula": {"type": "string"},
          "Events": {"$ref": "#/definitions/aliases"},
          "Constants": {"$ref": "#/definitions/aliases"}
        },
        "required": ["LegacyName", "Events", "Constants", "Formula"]
      }
    }
  },
  "definitions": {
    "aliases": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "Alias": {"type": "string"},
          "Name": {"type": "string"}
        },
        "required": ["Alias", "Name"]
      }
    }
  }
}`

var (
	metricListValidator    = jsonschema.MustCompileString("metric-list.json", metricListSchema)
	metricRecordsValidator = jsonschema.MustCompileString("metric-records.json", metricRecordsSchema)
	perfmonValidator       = jsonschema.MustCompileString("perfmon.json", perfmonSchema)
)
