package viewer

// viewerPage is the embedded timeline page. It is self contained: the
// viewer must work offline with no external assets.
const viewerPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>chronotrace</title>
<style>
  body { margin: 0; background: #15161a; color: #d6d8de; font: 13px/1.5 -apple-system, "Segoe UI", sans-serif; }
  header { display: flex; align-items: center; gap: 16px; padding: 10px 16px; background: #1d1f26; border-bottom: 1px solid #2c2f3a; }
  header h1 { font-size: 15px; margin: 0; font-weight: 600; }
  #status { width: 9px; height: 9px; border-radius: 50%; background: #e05252; }
  #status.live { background: #4fbf67; }
  #summary { color: #8b8fa3; }
  #timeline { padding: 12px 16px; }
  .lane { margin-bottom: 10px; }
  .lane-label { color: #8b8fa3; font-size: 11px; margin-bottom: 2px; }
  .lane-track { position: relative; height: 26px; background: #1d1f26; border-radius: 3px; overflow: hidden; }
  .event { position: absolute; top: 2px; height: 22px; border-radius: 2px; overflow: hidden; white-space: nowrap; font-size: 11px; line-height: 22px; padding: 0 4px; box-sizing: border-box; color: #15161a; cursor: default; }
  #empty { color: #8b8fa3; padding: 24px 16px; }
</style>
</head>
<body>
<header>
  <h1>chronotrace</h1>
  <div id="status" title="live updates"></div>
  <div id="summary"></div>
</header>
<div id="timeline"></div>
<div id="empty" hidden>No events recorded yet.</div>
<script>
(function () {
  var palette = ['#7aa2f7', '#9ece6a', '#e0af68', '#f7768e', '#bb9af7', '#7dcfff', '#ff9e64', '#73daca'];

  function colorFor(name) {
    var h = 0;
    for (var i = 0; i < name.length; i++) {
      h = (h * 31 + name.charCodeAt(i)) >>> 0;
    }
    return palette[h % palette.length];
  }

  function render(doc) {
    var events = doc.traceEvents || [];
    var timeline = document.getElementById('timeline');
    var empty = document.getElementById('empty');
    timeline.innerHTML = '';
    empty.hidden = events.length > 0;

    if (events.length === 0) {
      document.getElementById('summary').textContent = '0 events';
      document.body.dataset.ready = '1';
      return;
    }

    var start = Infinity, end = -Infinity;
    var lanes = {};
    events.forEach(function (e) {
      start = Math.min(start, e.ts);
      end = Math.max(end, e.ts + e.dur);
      (lanes[e.tid] = lanes[e.tid] || []).push(e);
    });
    var span = Math.max(end - start, 1);
    var tids = Object.keys(lanes).sort(function (a, b) { return a - b; });

    document.getElementById('summary').textContent =
      events.length + ' events · ' + tids.length + ' threads · ' + span + ' µs';

    tids.forEach(function (tid) {
      var lane = document.createElement('div');
      lane.className = 'lane';
      var label = document.createElement('div');
      label.className = 'lane-label';
      label.textContent = 'tid ' + tid;
      var track = document.createElement('div');
      track.className = 'lane-track';

      lanes[tid].forEach(function (e) {
        var el = document.createElement('div');
        el.className = 'event';
        el.style.left = ((e.ts - start) / span * 100) + '%';
        el.style.width = Math.max(e.dur / span * 100, 0.15) + '%';
        el.style.background = colorFor(e.name);
        el.textContent = e.name;
        el.title = e.name + ': ' + e.dur + ' µs @ ' + e.ts;
        track.appendChild(el);
      });

      lane.appendChild(label);
      lane.appendChild(track);
      timeline.appendChild(lane);
    });

    document.body.dataset.ready = '1';
  }

  function load() {
    fetch('/trace')
      .then(function (res) {
        if (!res.ok) { throw new Error('trace not available'); }
        return res.json();
      })
      .then(render)
      .catch(function () {
        document.getElementById('summary').textContent = 'waiting for trace file';
        document.body.dataset.ready = '1';
      });
  }

  function connect() {
    var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    var ws = new WebSocket(proto + location.host + '/ws');
    var status = document.getElementById('status');
    ws.onopen = function () { status.className = 'live'; };
    ws.onclose = function () {
      status.className = '';
      setTimeout(connect, 2000);
    };
    ws.onmessage = function (raw) {
      try {
        var msg = JSON.parse(raw.data);
        if (msg.event === 'trace.updated') { load(); }
      } catch (err) { /* ignore malformed frames */ }
    };
  }

  load();
  connect();
})();
</script>
</body>
</html>
`
