// Package docs registers the OpenAPI description of the HTTP API with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "AdminToken": {"type": "apiKey", "name": "X-Admin-Token", "in": "header"}
    },
    "paths": {
        "/healthz": {
            "get": {"tags": ["system"], "summary": "Liveness check", "responses": {"200": {"description": "OK"}}}
        },
        "/auth/token": {
            "post": {
                "tags": ["auth"],
                "summary": "Issue a token for a participant key and role",
                "security": [{"AdminToken": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/TokenRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/participants": {
            "get": {
                "tags": ["participants"],
                "summary": "List participants",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ParticipantList"}}}
            },
            "post": {
                "tags": ["participants"],
                "summary": "Create a participant",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateParticipantInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ParticipantResponse"}},
                    "409": {"description": "Email in use", "schema": {"$ref": "#/definitions/Error"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/participants/{participantKey}": {
            "get": {
                "tags": ["participants"],
                "summary": "Get a participant",
                "parameters": [{"$ref": "#/parameters/participantKey"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ParticipantResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/leaderboard": {
            "get": {
                "tags": ["participants"],
                "summary": "Overall leaderboard",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Leaderboard"}}}
            }
        },
        "/tournaments": {
            "get": {
                "tags": ["tournaments"],
                "summary": "List tournaments",
                "parameters": [{"in": "query", "name": "state", "type": "string", "enum": ["CREATED", "ACTIVE", "ENDED"]}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["tournaments"],
                "summary": "Create a tournament",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTournamentInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/TournamentResponse"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tournaments/{tournamentKey}": {
            "get": {
                "tags": ["tournaments"],
                "summary": "Get a tournament",
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TournamentResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "delete": {
                "tags": ["tournaments"],
                "summary": "Delete a tournament that is not active",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {"204": {"description": "Deleted"}, "409": {"description": "Tournament is active", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/tournaments/{tournamentKey}/status": {
            "get": {
                "tags": ["tournaments"],
                "summary": "Current tournament status",
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tournaments/{tournamentKey}/registration": {
            "patch": {
                "tags": ["registration"],
                "summary": "Open or close registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/tournamentKey"},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"open": {"type": "boolean"}}}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/TournamentResponse"}}}
            }
        },
        "/tournaments/{tournamentKey}/capacity": {
            "patch": {
                "tags": ["registration"],
                "summary": "Change the participant limit",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/tournamentKey"},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"max_participants": {"type": "integer"}}}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/TournamentResponse"}}}
            }
        },
        "/tournaments/{tournamentKey}/register": {
            "post": {
                "tags": ["registration"],
                "summary": "Register the calling player",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {
                    "201": {"description": "Registered"},
                    "409": {"description": "Registration closed or already registered", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tournaments/{tournamentKey}/invitations": {
            "post": {
                "tags": ["registration"],
                "summary": "Invite a participant",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentKey"}, {"$ref": "#/parameters/participantKeyBody"}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/tournaments/{tournamentKey}/invitations/accept": {
            "post": {
                "tags": ["registration"],
                "summary": "Accept the calling player's invitation",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {"200": {"description": "Registered"}, "409": {"description": "Invitation expired", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/tournaments/{tournamentKey}/participants": {
            "get": {
                "tags": ["tournaments"],
                "summary": "Participants with invitation status",
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tournaments/{tournamentKey}/leaderboard": {
            "get": {
                "tags": ["tournaments"],
                "summary": "Tournament leaderboard",
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Leaderboard"}}}
            }
        },
        "/tournaments/{tournamentKey}/start": {
            "post": {
                "tags": ["lifecycle"],
                "summary": "Generate the schedule and start round 1",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TournamentResponse"}},
                    "409": {"description": "Already started or ended", "schema": {"$ref": "#/definitions/Error"}},
                    "422": {"description": "No participants", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tournaments/{tournamentKey}/end": {
            "post": {
                "tags": ["lifecycle"],
                "summary": "End the tournament and announce the winners",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/TournamentResponse"}}}
            }
        },
        "/tournaments/{tournamentKey}/advance": {
            "post": {
                "tags": ["lifecycle"],
                "summary": "Close the current round and start the next one",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RoundResponse"}},
                    "409": {"description": "Round still ongoing", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tournaments/{tournamentKey}/current-round": {
            "put": {
                "tags": ["lifecycle"],
                "summary": "Set the current round",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/tournamentKey"},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"number": {"type": "integer"}}}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoundResponse"}}}
            }
        },
        "/tournaments/{tournamentKey}/rounds": {
            "get": {
                "tags": ["rounds"],
                "summary": "List rounds",
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tournaments/{tournamentKey}/rounds/current": {
            "get": {
                "tags": ["rounds"],
                "summary": "Current round",
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoundResponse"}}}
            }
        },
        "/tournaments/{tournamentKey}/rounds/{number}": {
            "get": {
                "tags": ["rounds"],
                "summary": "Round by number",
                "parameters": [{"$ref": "#/parameters/tournamentKey"}, {"in": "path", "name": "number", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RoundResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tournaments/{tournamentKey}/referees": {
            "post": {
                "tags": ["referees"],
                "summary": "Add a referee to the tournament",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentKey"}, {"$ref": "#/parameters/participantKeyBody"}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/tournaments/{tournamentKey}/players/{participantKey}/results": {
            "get": {
                "tags": ["matches"],
                "summary": "Results of one player",
                "parameters": [{"$ref": "#/parameters/tournamentKey"}, {"$ref": "#/parameters/participantKey"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tournaments/{tournamentKey}/matches/last": {
            "get": {
                "tags": ["matches"],
                "summary": "Most recently started finished match",
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/MatchResponse"}}}
            }
        },
        "/tournaments/{tournamentKey}/matches/ongoing/count": {
            "get": {
                "tags": ["matches"],
                "summary": "Number of active matches",
                "parameters": [{"$ref": "#/parameters/tournamentKey"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/matches/{matchKey}": {
            "get": {
                "tags": ["matches"],
                "summary": "Get a match",
                "parameters": [{"$ref": "#/parameters/matchKey"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MatchResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/matches/{matchKey}/referee": {
            "post": {
                "tags": ["referees"],
                "summary": "Assign a referee to the match",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/matchKey"}, {"$ref": "#/parameters/participantKeyBody"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/MatchResponse"}}}
            }
        },
        "/matches/{matchKey}/result": {
            "post": {
                "tags": ["results"],
                "summary": "Report the calling player's result",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/matchKey"}, {"$ref": "#/parameters/resultBody"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResultResponse"}},
                    "403": {"description": "Not a player of this match", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "Duplicate report or match ended", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/matches/{matchKey}/referee-result": {
            "post": {
                "tags": ["results"],
                "summary": "Record the referee's result",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/matchKey"}, {"$ref": "#/parameters/resultBody"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResultResponse"}}}
            }
        }
    },
    "parameters": {
        "tournamentKey": {"in": "path", "name": "tournamentKey", "required": true, "type": "string"},
        "participantKey": {"in": "path", "name": "participantKey", "required": true, "type": "string"},
        "matchKey": {"in": "path", "name": "matchKey", "required": true, "type": "string"},
        "participantKeyBody": {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"participant_key": {"type": "string"}}}},
        "resultBody": {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"result": {"type": "string", "example": "1 - 0"}}}}
    },
    "definitions": {
        "Error": {"type": "object", "properties": {"error": {"type": "string"}}},
        "TokenRequest": {"type": "object", "properties": {"participant_key": {"type": "string"}, "role": {"type": "string", "enum": ["admin", "referee", "player"]}}},
        "TokenResponse": {"type": "object", "properties": {"token": {"type": "string"}}},
        "CreateParticipantInput": {"type": "object", "required": ["email", "first_name"], "properties": {"email": {"type": "string"}, "first_name": {"type": "string"}, "last_name": {"type": "string"}}},
        "CreateTournamentInput": {"type": "object", "required": ["name", "max_participants"], "properties": {"name": {"type": "string"}, "max_participants": {"type": "integer"}, "start_date": {"type": "string", "format": "date-time"}}},
        "Participant": {"type": "object", "properties": {"key": {"type": "string"}, "email": {"type": "string"}, "first_name": {"type": "string"}, "last_name": {"type": "string"}, "score": {"type": "number"}, "created_at": {"type": "string", "format": "date-time"}}},
        "ParticipantResponse": {"type": "object", "properties": {"participant": {"$ref": "#/definitions/Participant"}}},
        "ParticipantList": {"type": "object", "properties": {"participants": {"type": "array", "items": {"$ref": "#/definitions/Participant"}}}},
        "Tournament": {"type": "object", "properties": {"key": {"type": "string"}, "name": {"type": "string"}, "state": {"type": "string"}, "registration_open": {"type": "boolean"}, "max_participants": {"type": "integer"}, "start_date": {"type": "string", "format": "date-time"}, "participant_keys": {"type": "array", "items": {"type": "string"}}, "referee_keys": {"type": "array", "items": {"type": "string"}}, "current_round": {"type": "integer"}, "winner_keys": {"type": "array", "items": {"type": "string"}}}},
        "TournamentResponse": {"type": "object", "properties": {"tournament": {"$ref": "#/definitions/Tournament"}}},
        "Round": {"type": "object", "properties": {"key": {"type": "string"}, "tournament_key": {"type": "string"}, "number": {"type": "integer"}, "state": {"type": "string"}, "match_keys": {"type": "array", "items": {"type": "string"}}}},
        "RoundResponse": {"type": "object", "properties": {"round": {"$ref": "#/definitions/Round"}}},
        "MatchResult": {"type": "object", "properties": {"key": {"type": "string"}, "first_player": {"type": "string"}, "second_player": {"type": "string"}, "first_player_result": {"type": "string"}, "second_player_result": {"type": "string"}, "result": {"type": "string"}}},
        "ResultResponse": {"type": "object", "properties": {"result": {"$ref": "#/definitions/MatchResult"}}},
        "Match": {"type": "object", "properties": {"key": {"type": "string"}, "tournament_key": {"type": "string"}, "round_key": {"type": "string"}, "round_number": {"type": "integer"}, "state": {"type": "string"}, "first_player": {"type": "string"}, "second_player": {"type": "string"}, "referee": {"type": "string"}, "started_at": {"type": "string", "format": "date-time"}, "result": {"$ref": "#/definitions/MatchResult"}}},
        "MatchResponse": {"type": "object", "properties": {"match": {"$ref": "#/definitions/Match"}}},
        "LeaderboardEntry": {"type": "object", "properties": {"participant_key": {"type": "string"}, "name": {"type": "string"}, "score": {"type": "number"}}},
        "Leaderboard": {"type": "object", "properties": {"leaderboard": {"type": "array", "items": {"$ref": "#/definitions/LeaderboardEntry"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Chess Tournament API",
	Description:      "Round-robin chess tournaments with player and referee result reporting.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
