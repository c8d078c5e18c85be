package sqlinline

const QEnsureVideosTable = `--sql 8f2d1c4a-9b07-4c31-a5d8-2e6f013b7a92
CREATE TABLE IF NOT EXISTS videos (
  id               uuid PRIMARY KEY,
  title            text NOT NULL,
  file_name        text NOT NULL,
  file_key         text NOT NULL UNIQUE,
  file_size        bigint NOT NULL,
  mime_type        text NOT NULL,
  duration_seconds double precision,
  status           text NOT NULL,
  platform         text NOT NULL DEFAULT '',
  original_url     text NOT NULL DEFAULT '',
  created_at       timestamptz NOT NULL DEFAULT now(),
  updated_at       timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos (created_at DESC);
`

const QInsertVideo = `--sql 3a7e5b90-12cd-4f86-b3aa-84d09e6c51f7
INSERT INTO videos (id, title, file_name, file_key, file_size, mime_type, duration_seconds, status, platform, original_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at, updated_at;
`

const QSelectVideoByID = `--sql c91f8e26-5d43-4ab1-9c02-7b5a60d4e813
SELECT id, title, file_name, file_key, file_size, mime_type, duration_seconds, status, platform, original_url, created_at, updated_at
FROM videos
WHERE id = $1;
`

const QListVideos = `--sql 6b04d7f3-8e2a-47c5-bd19-f50c3a928e64
SELECT id, title, file_name, file_key, file_size, mime_type, duration_seconds, status, platform, original_url, created_at, updated_at
FROM videos
ORDER BY created_at DESC
LIMIT $1;
`

const QDeleteVideo = `--sql e57a2c18-4f9b-4d60-8317-9ad1b6e0c425
DELETE FROM videos WHERE id = $1;
`
