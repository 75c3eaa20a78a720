package nasa_test

// searchBody is a trimmed NASA Image and Video Library response. The third
// item is wrapped under "data", the fourth is missing its title, and the
// last is not an object at all.
const searchBody = `{
  "collection": {
    "version": "1.0",
    "href": "https://images-api.nasa.gov/search?q=apollo%2011",
    "items": [
      {
        "href": "https://images-assets.nasa.gov/image/as11-40-5874/collection.json",
        "data": [{
          "center": "JSC",
          "title": "Apollo 11 Mission image - Astronaut Edwin Aldrin poses beside the U.S. flag",
          "nasa_id": "as11-40-5874",
          "media_type": "image",
          "keywords": ["APOLLO 11", "Moon"],
          "date_created": "1969-07-20T00:00:00Z",
          "description": "<p>Astronaut Edwin E. Aldrin Jr. poses for a photograph.</p>"
        }],
        "links": [
          {"href": "https://images-assets.nasa.gov/image/as11-40-5874/as11-40-5874~thumb.jpg", "rel": "preview", "render": "image"}
        ]
      },
      {
        "href": "https://images-assets.nasa.gov/image/as11-44-6642/collection.json",
        "data": [{
          "center": "JSC",
          "title": "View of Earth rising above the lunar horizon",
          "nasa_id": "as11-44-6642",
          "media_type": "image",
          "date_created": "1969-07-20T00:00:00Z"
        }]
      },
      {
        "data": {
          "href": "https://images-assets.nasa.gov/image/S69-39961/collection.json",
          "data": [{"nasa_id": "S69-39961", "title": "Apollo 11 crew", "media_type": "image"}]
        }
      },
      {
        "data": [{"nasa_id": "no-title", "media_type": "image"}]
      },
      "not an item"
    ],
    "metadata": {"total_hits": 336},
    "links": [
      {"rel": "next", "prompt": "Next", "href": "NEXT_URL"}
    ]
  }
}`
