package server

// indexHTML plays the intro, then lists departments around the title and
// opens a detail view when one is clicked.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>NeonGraph - Partnership Visualization</title>
  <style>
    body {
      font-family: 'Helvetica Neue', Arial, sans-serif;
      margin: 0;
      background: #000;
      color: #fff;
      overflow: hidden;
    }
    #stage {
      position: absolute;
      inset: 0;
      width: 100%;
      height: 100%;
      object-fit: contain;
    }
    .title {
      position: absolute;
      top: 40%;
      width: 100%;
      text-align: center;
      font-size: 48px;
      text-shadow: 0 0 12px #00ffff;
      pointer-events: none;
    }
    .slot {
      position: absolute;
      width: 200px;
      padding: 10px;
      border: 1px solid #00ffff;
      border-radius: 8px;
      background: rgba(0,0,0,0.6);
      cursor: pointer;
      box-shadow: 0 0 10px #00ffff;
    }
    .toolbar {
      position: absolute;
      top: 10px;
      left: 10px;
    }
    .btn {
      background: transparent;
      color: #00ffff;
      border: 1px solid #00ffff;
      padding: 6px 14px;
      border-radius: 4px;
      cursor: pointer;
    }
  </style>
</head>
<body>
  <img id="stage" alt="">
  <div class="title" id="title">Partnerships</div>
  <div id="slots"></div>
  <div class="toolbar">
    <button class="btn" id="skip">Skip intro</button>
    <button class="btn" id="back" hidden>Back</button>
    <form action="/upload" method="post" enctype="multipart/form-data" style="display:inline">
      <input type="file" name="dataFile" accept=".json,.csv" required>
      <button type="submit" class="btn">Upload</button>
    </form>
  </div>
  <script>
    const stage = document.getElementById('stage');
    let session = null;
    let timer = null;

    function frameURL() {
      const base = session ? '/api/sessions/' + session + '/frame.png' : '/api/intro/frame.png';
      return base + '?t=' + Date.now();
    }
    function refresh() { stage.src = frameURL(); }
    function play() { clearInterval(timer); timer = setInterval(refresh, 66); }

    async function overview() {
      const res = await fetch('/api/overview?w=' + innerWidth + '&h=' + innerHeight);
      const slots = await res.json();
      const box = document.getElementById('slots');
      box.innerHTML = '';
      for (const s of slots) {
        const el = document.createElement('div');
        el.className = 'slot';
        el.style.left = s.x + 'px';
        el.style.top = s.y + 'px';
        el.textContent = s.name;
        el.onclick = () => open(s.department_id);
        box.appendChild(el);
      }
    }

    async function open(id) {
      const res = await fetch('/api/sessions', {method: 'POST', body: JSON.stringify({department: id})});
      if (!res.ok) return;
      session = (await res.json()).id;
      document.getElementById('slots').hidden = true;
      document.getElementById('title').hidden = true;
      document.getElementById('back').hidden = false;
      play();
    }

    document.getElementById('back').onclick = async () => {
      await fetch('/api/sessions/' + session, {method: 'DELETE'});
      session = null;
      document.getElementById('slots').hidden = false;
      document.getElementById('title').hidden = false;
      document.getElementById('back').hidden = true;
      refresh();
    };
    document.getElementById('skip').onclick = () => fetch('/api/intro/skip', {method: 'POST'});
    stage.onclick = (e) => {
      if (!session) return;
      const r = stage.getBoundingClientRect();
      fetch('/api/sessions/' + session + '/pointer?click=1&x=' + (e.clientX - r.left) + '&y=' + (e.clientY - r.top), {method: 'POST'});
    };

    new EventSource('/events').addEventListener('viz.intro.skipped', refresh);
    overview();
    play();
  </script>
</body>
</html>
`
