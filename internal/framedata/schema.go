package framedata

// characterSchemaJSON is the JSON Schema applied to .json character files
// before decoding. YAML files go through the typed decoder directly; both
// paths share the semantic validation in validate.go.
const characterSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "weight", "gravity", "max_fall_speed", "shield_hp", "ecb", "skeleton", "actions"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "weight": {"type": "number", "exclusiveMinimum": 0},
    "gravity": {"type": "number", "exclusiveMinimum": 0},
    "max_fall_speed": {"type": "number", "exclusiveMinimum": 0},
    "friction": {"type": "number", "minimum": 0},
    "walk_speed": {"type": "number", "minimum": 0},
    "air_speed": {"type": "number", "minimum": 0},
    "jump_velocity": {"type": "number", "minimum": 0},
    "air_jump_velocity": {"type": "number", "minimum": 0},
    "air_jumps": {"type": "integer", "minimum": 0},
    "shield_hp": {"type": "number", "exclusiveMinimum": 0},
    "ecb": {"type": "array", "items": {"type": "number"}, "minItems": 4, "maxItems": 4},
    "skeleton": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "parent", "offset"],
        "properties": {
          "name": {"type": "string"},
          "parent": {"type": "integer", "minimum": -1},
          "offset": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3}
        }
      }
    },
    "actions": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["duration"],
        "properties": {
          "duration": {"type": "integer", "minimum": 1},
          "next": {"type": "string"},
          "cancel": {"type": "array", "items": {"type": "string"}},
          "cancel_from": {"type": "integer", "minimum": 0},
          "no_gravity": {"type": "boolean"},
          "boxes": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["kind", "bone", "p1", "radius"],
              "properties": {
                "kind": {"type": "string"},
                "bone": {"type": "integer", "minimum": 0},
                "p1": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
                "p2": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
                "radius": {"type": "number", "exclusiveMinimum": 0},
                "frames": {"type": "array", "items": {"type": "integer", "minimum": 0}, "minItems": 2, "maxItems": 2},
                "hit": {
                  "type": "object",
                  "required": ["damage", "base_kb", "kb_growth"],
                  "properties": {
                    "damage": {"type": "number", "minimum": 0},
                    "base_kb": {"type": "number", "minimum": 0},
                    "kb_growth": {"type": "number", "minimum": 0},
                    "angle": {"type": "number"},
                    "priority": {"type": "integer"},
                    "hitstun_per_kb": {"type": "number", "minimum": 0},
                    "shield_damage": {"type": "number", "minimum": 0}
                  }
                }
              }
            }
          },
          "impulses": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["frame", "vel"],
              "properties": {
                "frame": {"type": "integer", "minimum": 0},
                "mode": {"type": "string", "enum": ["add", "set"]},
                "vel": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3}
              }
            }
          },
          "spawns": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["frame", "speed", "lifetime", "radius", "hit"],
              "properties": {
                "frame": {"type": "integer", "minimum": 0},
                "offset": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
                "speed": {"type": "number"},
                "gravity": {"type": "number", "minimum": 0},
                "lifetime": {"type": "integer", "minimum": 1},
                "radius": {"type": "number", "exclusiveMinimum": 0},
                "hit": {
                  "type": "object",
                  "required": ["damage", "base_kb", "kb_growth"],
                  "properties": {
                    "damage": {"type": "number", "minimum": 0},
                    "base_kb": {"type": "number", "minimum": 0},
                    "kb_growth": {"type": "number", "minimum": 0},
                    "angle": {"type": "number"},
                    "priority": {"type": "integer"},
                    "hitstun_per_kb": {"type": "number", "minimum": 0},
                    "shield_damage": {"type": "number", "minimum": 0}
                  }
                }
              }
            }
          },
          "poses": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["frame", "bone", "offset"],
              "properties": {
                "frame": {"type": "integer", "minimum": 0},
                "bone": {"type": "integer", "minimum": 0},
                "offset": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3}
              }
            }
          }
        }
      }
    }
  }
}`
