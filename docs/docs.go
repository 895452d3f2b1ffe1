// Package docs holds the generated OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Unlock the editor",
                "responses": {
                    "200": {
                        "description": "Token"
                    },
                    "401": {
                        "description": "Wrong password"
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.LoginRequest"
                        }
                    }
                ]
            }
        },
        "/site": {
            "get": {
                "tags": [
                    "site"
                ],
                "summary": "Get the whole site",
                "responses": {
                    "200": {
                        "description": "Site blob"
                    }
                }
            }
        },
        "/content": {
            "patch": {
                "tags": [
                    "site"
                ],
                "summary": "Update the site texts",
                "responses": {
                    "200": {
                        "description": "Updated site"
                    },
                    "400": {
                        "description": "Invalid theme"
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.ContentPatch"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/tree": {
            "get": {
                "tags": [
                    "tree"
                ],
                "summary": "Get the family tree",
                "responses": {
                    "200": {
                        "description": "Tree"
                    }
                }
            }
        },
        "/tree/anniversaries": {
            "get": {
                "tags": [
                    "tree"
                ],
                "summary": "List death anniversaries derived from the tree",
                "responses": {
                    "200": {
                        "description": "Events"
                    }
                }
            }
        },
        "/tree/members/{id}": {
            "get": {
                "tags": [
                    "tree"
                ],
                "summary": "Get one member for editing",
                "responses": {
                    "200": {
                        "description": "Member"
                    },
                    "404": {
                        "description": "Not found"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "put": {
                "tags": [
                    "tree"
                ],
                "summary": "Replace a member's details",
                "responses": {
                    "200": {
                        "description": "Member"
                    },
                    "404": {
                        "description": "Not found"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.UpdateMemberRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "tree"
                ],
                "summary": "Delete a member and their descendants",
                "responses": {
                    "200": {
                        "description": "Deleted"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "The founding ancestor cannot be deleted"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/tree/members/{id}/children": {
            "post": {
                "tags": [
                    "tree"
                ],
                "summary": "Add a child",
                "responses": {
                    "201": {
                        "description": "Child and tree"
                    },
                    "404": {
                        "description": "Not found"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/news": {
            "get": {
                "tags": [
                    "news"
                ],
                "summary": "List news, newest first",
                "responses": {
                    "200": {
                        "description": "News"
                    }
                }
            },
            "put": {
                "tags": [
                    "news"
                ],
                "summary": "Create or replace a news item",
                "responses": {
                    "200": {
                        "description": "News item"
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.NewsRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/news/{id}": {
            "delete": {
                "tags": [
                    "news"
                ],
                "summary": "Delete a news item",
                "responses": {
                    "200": {
                        "description": "Deleted"
                    },
                    "404": {
                        "description": "Not found"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events": {
            "get": {
                "tags": [
                    "events"
                ],
                "summary": "Get the events calendar",
                "responses": {
                    "200": {
                        "description": "Calendar"
                    }
                }
            },
            "post": {
                "tags": [
                    "events"
                ],
                "summary": "Add a calendar event",
                "responses": {
                    "201": {
                        "description": "Event"
                    },
                    "400": {
                        "description": "Invalid event type"
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.EventRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events/{id}": {
            "delete": {
                "tags": [
                    "events"
                ],
                "summary": "Delete an authored event",
                "responses": {
                    "200": {
                        "description": "Deleted"
                    },
                    "404": {
                        "description": "Not found"
                    },
                    "409": {
                        "description": "Derived anniversary"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/sync/settings": {
            "get": {
                "tags": [
                    "sync"
                ],
                "summary": "Get the remote document link",
                "responses": {
                    "200": {
                        "description": "Settings"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "put": {
                "tags": [
                    "sync"
                ],
                "summary": "Change the remote document link",
                "responses": {
                    "200": {
                        "description": "Settings"
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.SyncSettingsRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/sync": {
            "post": {
                "tags": [
                    "sync"
                ],
                "summary": "Pull the remote document",
                "responses": {
                    "200": {
                        "description": "Sync result"
                    },
                    "502": {
                        "description": "Could not sync"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/export/tree.json": {
            "get": {
                "tags": [
                    "export"
                ],
                "summary": "Download the tree as JSON",
                "responses": {
                    "200": {
                        "description": "File"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/export/tree.csv": {
            "get": {
                "tags": [
                    "export"
                ],
                "summary": "Download the tree as CSV",
                "responses": {
                    "200": {
                        "description": "File"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/export/tree.png": {
            "get": {
                "tags": [
                    "export"
                ],
                "summary": "Download the tree as a PNG image",
                "responses": {
                    "200": {
                        "description": "File"
                    },
                    "500": {
                        "description": "Export failed"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/export/backup.json": {
            "get": {
                "tags": [
                    "export"
                ],
                "summary": "Download a full backup of the site",
                "responses": {
                    "200": {
                        "description": "File"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/views": {
            "post": {
                "tags": [
                    "views"
                ],
                "summary": "Open a tree view",
                "responses": {
                    "201": {
                        "description": "View"
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.CreateViewRequest"
                        }
                    }
                ]
            }
        },
        "/views/{id}": {
            "get": {
                "tags": [
                    "views"
                ],
                "summary": "Get a view's state and layout",
                "responses": {
                    "200": {
                        "description": "View"
                    },
                    "404": {
                        "description": "Not found"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "delete": {
                "tags": [
                    "views"
                ],
                "summary": "Close a view",
                "responses": {
                    "204": {
                        "description": "Closed"
                    },
                    "404": {
                        "description": "Not found"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/views/{id}/size": {
            "put": {
                "tags": [
                    "views"
                ],
                "summary": "Report the container size",
                "responses": {
                    "200": {
                        "description": "View"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.ResizeViewRequest"
                        }
                    }
                ]
            }
        },
        "/views/{id}/search": {
            "put": {
                "tags": [
                    "views"
                ],
                "summary": "Set the live search query",
                "responses": {
                    "200": {
                        "description": "View"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.SearchRequest"
                        }
                    }
                ]
            }
        },
        "/views/{id}/toggle/{memberId}": {
            "post": {
                "tags": [
                    "views"
                ],
                "summary": "Expand or collapse a member",
                "responses": {
                    "200": {
                        "description": "View"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "memberId",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/views/{id}/gestures": {
            "post": {
                "tags": [
                    "views"
                ],
                "summary": "Feed a pointer or touch event",
                "responses": {
                    "200": {
                        "description": "View"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/treeview.Gesture"
                        }
                    }
                ]
            }
        },
        "/views/{id}/wheel": {
            "post": {
                "tags": [
                    "views"
                ],
                "summary": "Feed a wheel event",
                "responses": {
                    "200": {
                        "description": "View"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.WheelRequest"
                        }
                    }
                ]
            }
        },
        "/views/{id}/zoom": {
            "post": {
                "tags": [
                    "views"
                ],
                "summary": "Zoom one step or to an absolute scale",
                "responses": {
                    "200": {
                        "description": "View"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ports.ZoomRequest"
                        }
                    }
                ]
            }
        },
        "/views/{id}/reset": {
            "post": {
                "tags": [
                    "views"
                ],
                "summary": "Reset zoom and centre the tree",
                "responses": {
                    "200": {
                        "description": "View"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/views/{id}/snapshot.png": {
            "get": {
                "tags": [
                    "views"
                ],
                "summary": "Download the view as a PNG image",
                "responses": {
                    "200": {
                        "description": "File"
                    },
                    "404": {
                        "description": "Not found"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "ports.LoginRequest": {
            "type": "object"
        },
        "ports.ContentPatch": {
            "type": "object"
        },
        "ports.UpdateMemberRequest": {
            "type": "object"
        },
        "ports.NewsRequest": {
            "type": "object"
        },
        "ports.EventRequest": {
            "type": "object"
        },
        "ports.SyncSettingsRequest": {
            "type": "object"
        },
        "ports.CreateViewRequest": {
            "type": "object"
        },
        "ports.ResizeViewRequest": {
            "type": "object"
        },
        "ports.SearchRequest": {
            "type": "object"
        },
        "treeview.Gesture": {
            "type": "object"
        },
        "ports.WheelRequest": {
            "type": "object"
        },
        "ports.ZoomRequest": {
            "type": "object"
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the token from /auth/login.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Gia Phả API",
	Description:      "Family genealogy site: tree editor, news, events calendar, shared-document sync and tree views.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
